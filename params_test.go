package main

import (
	"math"
	"testing"
)

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"10", 10, true},
		{"2.5", 2.5, true},
		{"1e2", 100, true},
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"pi/2", math.Pi / 2, true},
		{"2pi", 2 * math.Pi, true},
		{"2*pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"-pi/2", -math.Pi / 2, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
		{"x", 0, false},
	}

	for _, tt := range tests {
		got, err := parseParamExpr(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("parseParamExpr(%q): err=%v, want ok=%v", tt.input, err, tt.ok)
			continue
		}
		if tt.ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("parseParamExpr(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{10, "10"},
		{1.5, "1.5"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := formatParam(tt.input); got != tt.want {
			t.Errorf("formatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPlotConfig(t *testing.T) {
	cfg, err := plotConfig(400, "2*pi")
	if err != nil {
		t.Fatalf("plotConfig: %v", err)
	}
	if cfg.Samples != 401 {
		t.Errorf("even sample count should be bumped to 401, got %d", cfg.Samples)
	}
	if math.Abs(cfg.Window-2*math.Pi) > 1e-12 {
		t.Errorf("window = %g, want 2*pi", cfg.Window)
	}

	cfg, err = plotConfig(101, "2")
	if err != nil {
		t.Fatalf("plotConfig: %v", err)
	}
	if cfg.LimitRadius != 2 {
		t.Errorf("limit radius should shrink to the window, got %g", cfg.LimitRadius)
	}

	bad := []struct {
		samples int
		window  string
	}{
		{1, "10"},
		{401, "0"},
		{401, "-pi"},
		{401, "wide"},
	}
	for _, tt := range bad {
		if _, err := plotConfig(tt.samples, tt.window); err == nil {
			t.Errorf("plotConfig(%d, %q) should fail", tt.samples, tt.window)
		}
	}
}
