package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1e-15, "0"},
		{math.Pi, "pi"},
		{-math.Pi, "-pi"},
		{math.Pi / 2, "pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{2 * math.Pi, "2*pi"},
		{-5 * math.Pi / 6, "-5*pi/6"},
		{10, "10"},
		{2.5, "2.5"},
		{-0.125, "-0.125"},
		{123456, "1.2e+05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tickLabel(tt.in), "tickLabel(%v)", tt.in)
	}
}

func TestRobustRange(t *testing.T) {
	vs := make([]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		vs = append(vs, float64(i))
	}
	vs[100] = 1e12
	vs = append(vs, math.NaN(), math.Inf(1))
	lo, hi, ok := robustRange(vs)
	assert.True(t, ok)
	assert.Equal(t, 2.0, lo)
	assert.Less(t, hi, 1e12)

	_, _, ok = robustRange([]float64{math.NaN()})
	assert.False(t, ok)
}
