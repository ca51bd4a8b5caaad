package symbolic

import (
	"errors"
	"fmt"
	"math"
)

// ErrUndefinedLimit is returned when the one-sided limits disagree or the
// expression oscillates near the point.
var ErrUndefinedLimit = errors.New("limit is undefined")

// Direction selects which side a limit approaches from.
type Direction int

const (
	Both Direction = iota
	Plus
	Minus
)

func (d Direction) String() string {
	switch d {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return "+-"
}

const (
	maxLHopital = 5
	// limitVar replaces x when the point is infinite: x = ±1/t, t -> 0+.
	limitVar = "_t"
)

// Limit returns the two-sided limit of e as x approaches point.
func Limit(e Expr, x string, point Expr) (Expr, error) {
	return LimitDir(e, x, point, Both)
}

// LimitDir returns the limit of e as x approaches point from dir. The point
// may be oo or -oo, in which case dir is ignored. Unbounded limits are
// reported as Oo or NegOo.
func LimitDir(e Expr, x string, point Expr, dir Direction) (Expr, error) {
	e = e.Simplify()
	if _, ok := point.(*Inf); !ok {
		if v, ok := Value(point); !ok || !finite(v) {
			return nil, fmt.Errorf("%w: point %s is not a number", ErrUndefinedLimit, point)
		}
	}
	if l, ok := kernelLimit(e, x, point, dir); ok {
		return l, nil
	}
	if inf, ok := point.(*Inf); ok {
		t := S(limitVar)
		sub := e.Sub(x, DivOf(N(int64(inf.sign)), t))
		return oneSided(sub, limitVar, N(0), Plus, maxLHopital)
	}
	if dir != Both {
		return oneSided(e, x, point, dir, maxLHopital)
	}

	left, errL := oneSided(e, x, point, Minus, maxLHopital)
	right, errR := oneSided(e, x, point, Plus, maxLHopital)
	if errL != nil || errR != nil {
		return nil, fmt.Errorf("%w: %s as %s -> %s", ErrUndefinedLimit, e, x, point)
	}
	if l, ok := left.(*Inf); ok {
		if r, ok := right.(*Inf); ok && l.sign == r.sign {
			return l, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s from the left, %s from the right", ErrUndefinedLimit, e, left, right)
	}
	if _, ok := right.(*Inf); ok {
		return nil, fmt.Errorf("%w: %s -> %s from the left, %s from the right", ErrUndefinedLimit, e, left, right)
	}
	if left.Equal(right) || Equivalent(left, right) {
		return right, nil
	}
	return nil, fmt.Errorf("%w: %s -> %s from the left, %s from the right", ErrUndefinedLimit, e, left, right)
}

func oneSided(e Expr, x string, point Expr, side Direction, depth int) (Expr, error) {
	for _, name := range FreeSymbols(e) {
		if name != x {
			l := Simplify(e.Sub(x, point))
			if zeroPower(l) {
				return nil, fmt.Errorf("%w: %s has a pole at %s = %s", ErrUndefinedLimit, e, x, point)
			}
			return l, nil
		}
	}
	p, _ := Value(point)
	env := map[string]float64{x: p}
	if v, ok := e.Eval(env); ok && finite(v) && !hasPole(e, env) && continuous(e, x, p, v, side) {
		exact := Simplify(e.Sub(x, point))
		if ev, ok := Value(exact); ok && math.Abs(ev-v) <= 1e-9*math.Max(1, math.Abs(v)) {
			return exact, nil
		}
		return NFloat(v), nil
	}

	if depth > 0 {
		if num, den, ok := extractQuotient(e); ok {
			nv, okN := num.Eval(env)
			dv, okD := den.Eval(env)
			zeroOverZero := math.Abs(nv) < 1e-12 && math.Abs(dv) < 1e-12
			infOverInf := math.IsInf(nv, 0) && math.IsInf(dv, 0)
			if okN && okD && (zeroOverZero || infOverInf) {
				next := Simplify(DivOf(Derivative(num, x), Derivative(den, x)))
				if r, err := oneSided(next, x, point, side, depth-1); err == nil {
					return r, nil
				}
			}
		}
	}
	return approach(e, x, p, side)
}

// continuous reports whether e stays near its value v just off p on side.
// A point given as a float can land a rounding error away from a pole,
// where e evaluates to something large but finite.
func continuous(e Expr, x string, p, v float64, side Direction) bool {
	step := 1e-12 * math.Max(1, math.Abs(p))
	if side == Minus {
		step = -step
	}
	w, ok := e.Eval(map[string]float64{x: p + step})
	return ok && finite(w) && math.Abs(w-v) <= 1e-3*math.Max(1, math.Abs(v))
}

// zeroPower reports whether e contains 0 raised to a non-positive power.
func zeroPower(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		if b, ok := v.base.(*Num); ok && b.IsZero() {
			if n, ok := v.exp.(*Num); !ok || !n.IsPositive() {
				return true
			}
		}
		return zeroPower(v.base) || zeroPower(v.exp)
	case *Add:
		for _, t := range v.terms {
			if zeroPower(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if zeroPower(f) {
				return true
			}
		}
	case *Func:
		return zeroPower(v.arg)
	}
	return false
}

// hasPole reports whether any subexpression of e is infinite or undefined
// at env, even when the whole evaluates to a finite number as atan(1/x)
// does at 0.
func hasPole(e Expr, env map[string]float64) bool {
	if v, ok := e.Eval(env); ok && !finite(v) {
		return true
	}
	var kids []Expr
	switch v := e.(type) {
	case *Add:
		kids = v.terms
	case *Mul:
		kids = v.factors
	case *Pow:
		kids = []Expr{v.base, v.exp}
	case *Func:
		kids = []Expr{v.arg}
	}
	for _, k := range kids {
		if hasPole(k, env) {
			return true
		}
	}
	return false
}

// extractQuotient splits e into numerator and denominator by collecting
// the factors with negative exponents.
func extractQuotient(e Expr) (num, den Expr, ok bool) {
	switch v := e.(type) {
	case *Mul:
		var ns, ds []Expr
		for _, f := range v.factors {
			if p, isPow := f.(*Pow); isPow {
				if n, isNum := p.exp.(*Num); isNum && n.IsNegative() {
					ds = append(ds, PowOf(p.base, numNeg(n)))
					continue
				}
			}
			ns = append(ns, f)
		}
		if len(ds) == 0 {
			return nil, nil, false
		}
		if len(ns) == 0 {
			return N(1), MulOf(ds...), true
		}
		return MulOf(ns...), MulOf(ds...), true
	case *Pow:
		if n, isNum := v.exp.(*Num); isNum && n.IsNegative() {
			return N(1), PowOf(v.base, numNeg(n)), true
		}
	}
	return nil, nil, false
}

// approach closes in on the point numerically with shrinking steps.
func approach(e Expr, x string, p float64, side Direction) (Expr, error) {
	sign := 1.0
	if side == Minus {
		sign = -1
	}
	var vals []float64
	for k := 2; k <= 9; k++ {
		h := math.Pow(10, -float64(k))
		v, ok := e.Eval(map[string]float64{x: p + sign*h})
		if !ok || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s is not defined near %s = %g", ErrUndefinedLimit, e, x, p)
		}
		vals = append(vals, v)
	}
	n := len(vals)
	a, b, c := vals[n-3], vals[n-2], vals[n-1]

	if math.IsInf(c, 0) || (math.Abs(c) > 1e6 && math.Abs(c) > math.Abs(b) && math.Abs(b) > math.Abs(a)) {
		if math.Signbit(a) == math.Signbit(c) && math.Signbit(b) == math.Signbit(c) {
			if c < 0 {
				return NegOo, nil
			}
			return Oo, nil
		}
	}
	if finite(b) && finite(c) && math.Abs(b-c) <= 1e-5*math.Max(1, math.Abs(c)) {
		return rationalize(c), nil
	}
	return nil, fmt.Errorf("%w: %s does not settle near %s = %g", ErrUndefinedLimit, e, x, p)
}

// rationalize recovers small fractions and rational multiples of pi and E
// from a numerically computed limit.
func rationalize(v float64) Expr {
	tol := 1e-7 * math.Max(1, math.Abs(v))
	if math.Abs(v) < tol {
		return N(0)
	}
	// pi first: 355/226 would otherwise pass for pi/2.
	if p, q, ok := bestFraction(v/math.Pi, 12, tol/math.Pi); ok {
		return MulOf(F(p, q), Pi)
	}
	if p, q, ok := bestFraction(v/math.E, 12, tol/math.E); ok {
		return MulOf(F(p, q), E)
	}
	if p, q, ok := bestFraction(v, 1000, tol); ok {
		return F(p, q)
	}
	return NFloat(v)
}

// bestFraction walks the continued fraction expansion of v until the
// convergent is within tol or the denominator exceeds maxDen.
func bestFraction(v float64, maxDen int64, tol float64) (int64, int64, bool) {
	h0, h1 := int64(0), int64(1)
	k0, k1 := int64(1), int64(0)
	r := v
	for i := 0; i < 32; i++ {
		a := math.Floor(r)
		if math.Abs(a) > 1e12 {
			return 0, 0, false
		}
		ai := int64(a)
		h0, h1 = h1, ai*h1+h0
		k0, k1 = k1, ai*k1+k0
		if k1 > maxDen {
			return 0, 0, false
		}
		if math.Abs(float64(h1)/float64(k1)-v) <= tol {
			return h1, k1, true
		}
		frac := r - a
		if frac < 1e-15 {
			return 0, 0, false
		}
		r = 1 / frac
	}
	return 0, 0, false
}
