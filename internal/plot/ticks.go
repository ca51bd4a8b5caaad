package plot

import (
	"fmt"
	"math"
	"strconv"
)

// tickLabel formats an axis value, preferring pi notation for multiples of
// pi/2, pi/3, pi/4 and pi/6 so trig plots read naturally.
func tickLabel(v float64) string {
	if math.Abs(v) < 1e-12 {
		return "0"
	}
	for _, den := range []int{1, 2, 3, 4, 6} {
		k := v * float64(den) / math.Pi
		rk := math.Round(k)
		if rk == 0 || math.Abs(k-rk) > 1e-9 || math.Abs(rk) > 24 {
			continue
		}
		return piForm(int(rk), den)
	}
	return compactFloat(v)
}

func piForm(num, den int) string {
	g := gcd(abs(num), den)
	num, den = num/g, den/g
	sign := ""
	if num < 0 {
		sign = "-"
		num = -num
	}
	s := "pi"
	if num != 1 {
		s = strconv.Itoa(num) + "*pi"
	}
	if den != 1 {
		s += "/" + strconv.Itoa(den)
	}
	return sign + s
}

func compactFloat(v float64) string {
	a := math.Abs(v)
	if a >= 1e5 || a < 1e-3 {
		return fmt.Sprintf("%.2g", v)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
