package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"calcdeck/internal/plot"
)

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseParamExpr parses a numeric flag value, allowing pi multiples.
//
// Supported formats:
//   - Plain numbers: "10", "3.14", "-0.5", "1e2"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "3pi/4", "3*pi/4"
//   - Coefficients: "2pi", "2*pi"
func parseParamExpr(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	m := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("%q is not a number or pi expression", s)
	}
	coeff := 1.0
	if m[2] != "" {
		c, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("bad coefficient in %q", s)
		}
		coeff = c
	}
	v := coeff * math.Pi
	if m[3] != "" {
		d, err := strconv.ParseFloat(m[3], 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad denominator in %q", s)
		}
		v /= d
	}
	if m[1] == "-" {
		v = -v
	}
	return v, nil
}

// formatParam formats a value using pi notation when it is a small
// multiple of pi/d for d in 1, 2, 3, 4, 6, 8.
func formatParam(val float64) string {
	if val == 0 {
		return "0"
	}
	for _, d := range []int{1, 2, 3, 4, 6, 8} {
		n := val * float64(d) / math.Pi
		k := math.Round(n)
		if k == 0 || math.Abs(k) > 16 || math.Abs(n-k) > 1e-10 {
			continue
		}
		return piString(int(k), d)
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

func piString(k, d int) string {
	sign := ""
	if k < 0 {
		sign, k = "-", -k
	}
	s := "pi"
	if k != 1 {
		s = strconv.Itoa(k) + "*pi"
	}
	if d != 1 {
		s += "/" + strconv.Itoa(d)
	}
	return sign + s
}

// plotConfig builds the sampling settings from the command-line flags.
// An even sample count is bumped by one so a symmetric window samples 0.
func plotConfig(samples int, window string) (plot.Config, error) {
	cfg := plot.DefaultConfig()
	if samples < 2 {
		return cfg, fmt.Errorf("--samples must be at least 2, got %d", samples)
	}
	if samples%2 == 0 {
		samples++
	}
	cfg.Samples = samples

	w, err := parseParamExpr(window)
	if err != nil {
		return cfg, fmt.Errorf("--window: %w", err)
	}
	if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
		return cfg, fmt.Errorf("--window must be positive and finite, got %s", window)
	}
	cfg.Window = w
	cfg.LimitRadius = math.Min(cfg.LimitRadius, w)
	return cfg, nil
}
