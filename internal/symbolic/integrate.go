package symbolic

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNoClosedForm is returned when no integration rule applies.
	ErrNoClosedForm = errors.New("no closed form")
	// ErrDivergent is returned for improper integrals that do not converge.
	ErrDivergent = errors.New("integral diverges")
	// ErrBounds is returned when a bound is not a finite real number.
	ErrBounds = errors.New("bounds must be finite numbers")
)

const (
	maxIntegrateDepth = 6
	// substitution variable; the leading underscore keeps it out of the
	// parser's reach.
	subVar = "_u"
	// Integrand samples checked for interior singularities.
	scanSamples = 401
	// Panels for the composite Gauss-Legendre fallback.
	quadPanels = 16
)

// ============================================================
// Indefinite integration (rule-based)
// ============================================================

// Integrate returns an antiderivative of e with respect to x. The constant
// of integration is omitted.
func Integrate(e Expr, x string) (Expr, error) {
	r, ok := integrate(e.Simplify(), x, maxIntegrateDepth)
	if !ok {
		return nil, fmt.Errorf("%w: integral of %s d%s", ErrNoClosedForm, e, x)
	}
	return Simplify(r), nil
}

func integrate(e Expr, x string, depth int) (Expr, bool) {
	if depth <= 0 {
		return nil, false
	}
	if !DependsOn(e, x) {
		return MulOf(e, S(x)), true
	}
	if r, ok := kernelIntegral(e, x); ok {
		return r, true
	}
	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(v, N(2))), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := integrate(t, x, depth)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true
	case *Mul:
		return integrateProduct(v, x, depth)
	case *Pow:
		return integratePow(v, x, depth)
	case *Func:
		return integrateFunc(v, x, depth)
	}
	return nil, false
}

func integrateProduct(m *Mul, x string, depth int) (Expr, bool) {
	var consts, deps []Expr
	for _, f := range m.factors {
		if DependsOn(f, x) {
			deps = append(deps, f)
		} else {
			consts = append(consts, f)
		}
	}
	c := MulOf(consts...)
	if len(consts) == 0 {
		c = N(1)
	}
	if len(deps) == 1 {
		r, ok := integrate(deps[0], x, depth)
		if !ok {
			return nil, false
		}
		return MulOf(c, r), true
	}

	if r, ok := bySubstitution(deps, x, depth); ok {
		return MulOf(c, r), true
	}
	if r, ok := byParts(deps, x, depth); ok {
		return MulOf(c, r), true
	}
	inner := MulOf(deps...)
	if expanded := Expand(inner); expanded.String() != inner.String() {
		if r, ok := integrate(expanded, x, depth-1); ok {
			return MulOf(c, r), true
		}
	}
	return nil, false
}

// bySubstitution looks for a factor h(g(x)) whose companion factors are a
// constant multiple of g'(x).
func bySubstitution(factors []Expr, x string, depth int) (Expr, bool) {
	u := S(subVar)
	for i, f := range factors {
		candidates := []Expr{f}
		switch v := f.(type) {
		case *Func:
			candidates = append(candidates, v.arg)
		case *Pow:
			if !DependsOn(v.exp, x) {
				candidates = append(candidates, v.base)
			} else if !DependsOn(v.base, x) {
				candidates = append(candidates, v.exp)
			}
		}
		rest := make([]Expr, 0, len(factors))
		for j, other := range factors {
			if j != i {
				rest = append(rest, other)
			}
		}
		for _, g := range candidates {
			if _, isSym := g.(*Sym); isSym {
				continue
			}
			dg := Derivative(g, x)
			if IsZero(dg) {
				continue
			}
			ratio := Simplify(MulOf(append(rest, PowOf(dg, N(-1)))...))
			if DependsOn(ratio, x) {
				continue
			}
			h := replace(f, g, u)
			if DependsOn(h, x) {
				continue
			}
			hi, ok := integrate(h, subVar, depth-1)
			if !ok {
				continue
			}
			return MulOf(ratio, hi.Sub(subVar, g)), true
		}
	}
	return nil, false
}

// liate ranks factors for integration by parts: logarithms, inverse trig,
// algebraic, trigonometric, exponential. -1 means parts does not apply.
func liate(f Expr, x string) int {
	switch v := f.(type) {
	case *Func:
		switch v.name {
		case "log":
			return 0
		case "asin", "acos", "atan":
			return 1
		case "sin", "cos":
			return 3
		case "exp":
			return 4
		}
	case *Sym:
		return 2
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
				return 2
			}
		}
		if !DependsOn(v.base, x) {
			return 4
		}
	}
	return -1
}

func byParts(factors []Expr, x string, depth int) (Expr, bool) {
	if len(factors) != 2 {
		return nil, false
	}
	ra, rb := liate(factors[0], x), liate(factors[1], x)
	if ra < 0 || rb < 0 {
		return nil, false
	}
	u, dv := factors[0], factors[1]
	if rb < ra {
		u, dv = dv, u
	}
	v, ok := integrate(dv, x, depth-1)
	if !ok {
		return nil, false
	}
	rest, ok := integrate(Expand(MulOf(v, Derivative(u, x))), x, depth-1)
	if !ok {
		return nil, false
	}
	return SubOf(MulOf(u, v), rest), true
}

func integratePow(p *Pow, x string, depth int) (Expr, bool) {
	base, exp := p.base, p.exp
	if !DependsOn(exp, x) {
		if a, _, ok := linear(base, x); ok {
			if isNumEqual(exp, -1) {
				return DivOf(LogOf(AbsOf(base)), a), true
			}
			next := AddOf(exp, N(1))
			return DivOf(PowOf(base, next), MulOf(a, next)), true
		}
		if fn, ok := base.(*Func); ok {
			if a, _, ok := linear(fn.arg, x); ok {
				switch {
				case fn.name == "sin" && isNumEqual(exp, 2):
					return integrate(SubOf(F(1, 2), MulOf(F(1, 2), CosOf(MulOf(N(2), fn.arg)))), x, depth-1)
				case fn.name == "cos" && isNumEqual(exp, 2):
					return integrate(AddOf(F(1, 2), MulOf(F(1, 2), CosOf(MulOf(N(2), fn.arg)))), x, depth-1)
				case fn.name == "cos" && isNumEqual(exp, -2):
					return DivOf(TanOf(fn.arg), a), true
				case fn.name == "tan" && isNumEqual(exp, 2):
					return SubOf(DivOf(TanOf(fn.arg), a), S(x)), true
				}
			}
		}
		if isNumEqual(exp, -1) {
			if r, ok := arctanForm(base, x); ok {
				return r, true
			}
		}
		if n, ok := exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
			if _, isAdd := base.(*Add); isAdd {
				return integrate(Expand(p), x, depth-1)
			}
		}
		return bySubstitution([]Expr{p}, x, depth)
	}
	if !DependsOn(base, x) {
		if a, _, ok := linear(exp, x); ok {
			return DivOf(p, MulOf(a, LogOf(base))), true
		}
	}
	return nil, false
}

// arctanForm integrates 1/(a*x**2 + c) for positive constants a and c.
func arctanForm(base Expr, x string) (Expr, bool) {
	d2 := Derivative(Derivative(base, x), x)
	if DependsOn(d2, x) || IsZero(d2) {
		return nil, false
	}
	a := MulOf(F(1, 2), d2)
	c := Simplify(SubOf(base, MulOf(a, PowOf(S(x), N(2)))))
	if DependsOn(c, x) {
		return nil, false
	}
	av, okA := Value(a)
	cv, okC := Value(c)
	if !okA || !okC || av <= 0 || cv <= 0 {
		return nil, false
	}
	k := SqrtOf(DivOf(a, c))
	return DivOf(AtanOf(MulOf(k, S(x))), SqrtOf(MulOf(a, c))), true
}

func integrateFunc(f *Func, x string, depth int) (Expr, bool) {
	// log|u| integrates like log(u) on either side of the pole.
	if inner, ok := f.arg.(*Func); ok && f.name == "log" && inner.name == "Abs" {
		if a, _, ok := linear(inner.arg, x); ok {
			return DivOf(SubOf(MulOf(inner.arg, f), inner.arg), a), true
		}
	}
	a, _, ok := linear(f.arg, x)
	if !ok {
		return bySubstitution([]Expr{f}, x, depth)
	}
	u := f.arg
	var r Expr
	switch f.name {
	case "sin":
		r = Neg(CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = Neg(LogOf(AbsOf(CosOf(u))))
	case "exp":
		r = ExpOf(u)
	case "log":
		r = SubOf(MulOf(u, LogOf(u)), u)
	case "sinh":
		r = CoshOf(u)
	case "cosh":
		r = SinhOf(u)
	case "tanh":
		r = LogOf(CoshOf(u))
	case "asin":
		r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
	case "acos":
		r = SubOf(MulOf(u, AcosOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
	case "atan":
		r = SubOf(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LogOf(AddOf(N(1), PowOf(u, N(2))))))
	case "Abs":
		r = MulOf(F(1, 2), u, AbsOf(u))
	default:
		return nil, false
	}
	return DivOf(r, a), true
}

// linear matches e = a*x + b with a, b free of x and a non-zero.
func linear(e Expr, x string) (a, b Expr, ok bool) {
	d := Derivative(e, x)
	if IsZero(d) || DependsOn(d, x) {
		return nil, nil, false
	}
	b = Simplify(SubOf(e, MulOf(d, S(x))))
	if DependsOn(b, x) {
		return nil, nil, false
	}
	return d, b, true
}

// ============================================================
// Definite integration
// ============================================================

// DefiniteIntegral integrates e over [lo, hi]. It evaluates the
// antiderivative at the bounds, taking one-sided limits where it is not
// defined, and splits the interval at interior points where the integrand
// is infinite. Without an antiderivative it falls back to composite
// Gauss-Legendre quadrature and returns an approximate number.
func DefiniteIntegral(e Expr, x string, lo, hi Expr) (Expr, error) {
	a, okA := Value(lo)
	b, okB := Value(hi)
	if !okA || !okB || !finite(a) || !finite(b) {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrBounds, lo, hi)
	}
	if a == b {
		return N(0), nil
	}
	if a > b {
		r, err := DefiniteIntegral(e, x, hi, lo)
		if err != nil {
			return nil, err
		}
		return Neg(r), nil
	}

	fn, err := Lambdify(e, x)
	if err != nil {
		return nil, err
	}
	at := func(t float64) float64 { return fn.At(t) }
	poles := interiorPoles(at, a, b)

	antideriv, ierr := Integrate(e, x)
	if ierr != nil {
		if len(poles) > 0 {
			return nil, fmt.Errorf("%w: %s has a pole at %s = %g", ErrDivergent, e, x, poles[0])
		}
		return NFloat(gaussLegendre(at, a, b, quadPanels)), nil
	}

	points := []Expr{lo}
	for _, p := range poles {
		points = append(points, poleAt(p))
	}
	points = append(points, hi)
	sort.SliceStable(points, func(i, j int) bool {
		vi, _ := Value(points[i])
		vj, _ := Value(points[j])
		return vi < vj
	})

	total := Expr(N(0))
	for i := 0; i+1 < len(points); i++ {
		upper, err := boundValue(antideriv, x, points[i+1], Minus)
		if err != nil {
			return nil, err
		}
		lower, err := boundValue(antideriv, x, points[i], Plus)
		if err != nil {
			return nil, err
		}
		total = AddOf(total, SubOf(upper, lower))
	}
	return Simplify(total), nil
}

// boundValue evaluates an antiderivative at a bound, approaching from side
// so that a bound sitting on a pole is caught.
func boundValue(anti Expr, x string, at Expr, side Direction) (Expr, error) {
	l, err := oneSided(anti, x, at, side, maxLHopital)
	if err != nil {
		return nil, fmt.Errorf("%w: antiderivative undefined at %s = %s", ErrDivergent, x, at)
	}
	if _, inf := l.(*Inf); inf {
		return nil, fmt.Errorf("%w: antiderivative unbounded at %s = %s", ErrDivergent, x, at)
	}
	return l, nil
}

// interiorPoles locates the points strictly inside (a, b) where f blows
// up. Samples landing on a pole are taken as is; between samples a pole
// shows up as a sign change that bisection does not close onto a root, or
// as a local peak of |f| that keeps growing under ternary search.
func interiorPoles(f func(float64) float64, a, b float64) []float64 {
	n := scanSamples - 1
	step := (b - a) / float64(n)
	ts := make([]float64, n+1)
	vs := make([]float64, n+1)
	scale := 1.0
	for i := range ts {
		ts[i] = a + step*float64(i)
		vs[i] = f(ts[i])
		if finite(vs[i]) {
			scale = math.Max(scale, math.Abs(vs[i]))
		}
	}

	var poles []float64
	add := func(p float64) {
		if len(poles) > 0 && p-poles[len(poles)-1] <= 2*step {
			return
		}
		poles = append(poles, p)
	}
	for i := 1; i < n; i++ {
		if math.IsInf(vs[i], 0) {
			add(ts[i])
			continue
		}
		prev, cur, next := vs[i-1], vs[i], vs[i+1]
		if !finite(prev) || !finite(cur) || !finite(next) {
			continue
		}
		if cur != 0 && math.Abs(cur) > math.Abs(prev) && math.Abs(cur) >= math.Abs(next) {
			if p, ok := peakPole(f, ts[i-1], ts[i+1], scale); ok {
				add(p)
				continue
			}
		}
		if cur*next < 0 {
			if p, ok := bisectPole(f, ts[i], ts[i+1], scale); ok {
				add(p)
			}
		}
	}
	return poles
}

// poleGrowth is how far |f| must rise above the sampled values before a
// refined point counts as a pole.
const poleGrowth = 1e6

func bisectPole(f func(float64) float64, lo, hi, scale float64) (float64, bool) {
	flo := f(lo)
	for range 200 {
		mid := lo + (hi-lo)/2
		if mid <= lo || mid >= hi {
			break
		}
		fm := f(mid)
		switch {
		case math.IsInf(fm, 0):
			return mid, true
		case fm == 0 || math.IsNaN(fm):
			return 0, false
		case (fm < 0) == (flo < 0):
			lo, flo = mid, fm
		default:
			hi = mid
		}
	}
	if math.Min(math.Abs(f(lo)), math.Abs(f(hi))) > poleGrowth*scale {
		return lo + (hi-lo)/2, true
	}
	return 0, false
}

func peakPole(f func(float64) float64, lo, hi, scale float64) (float64, bool) {
	best := 0.0
	for range 200 {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if m1 <= lo || m2 >= hi || m1 >= m2 {
			break
		}
		v1, v2 := math.Abs(f(m1)), math.Abs(f(m2))
		if math.IsInf(v1, 0) {
			return m1, true
		}
		if math.IsInf(v2, 0) {
			return m2, true
		}
		if math.IsNaN(v1) || math.IsNaN(v2) {
			return 0, false
		}
		best = math.Max(best, math.Max(v1, v2))
		if v1 < v2 {
			lo = m1
		} else {
			hi = m2
		}
	}
	if best > poleGrowth*scale {
		return lo + (hi-lo)/2, true
	}
	return 0, false
}

// poleAt turns a located pole into a split point, snapping it to a nearby
// fraction or multiple of pi so the antiderivative is approached exactly.
func poleAt(p float64) Expr {
	r := rationalize(p)
	if v, ok := Value(r); ok && math.Abs(v-p) <= 1e-9*math.Max(1, math.Abs(p)) {
		return r
	}
	return floatExpr(p)
}

func floatExpr(v float64) Expr {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return N(int64(v))
	}
	return NFloat(v)
}

var (
	glNodes   = []float64{0.1488743389816312, 0.4333953941292472, 0.6794095682990244, 0.8650633666889845, 0.9739065285171717}
	glWeights = []float64{0.2955242247147529, 0.2692667193099963, 0.2190863625159820, 0.1494513491505806, 0.0666713443086881}
)

// gaussLegendre applies the 10-point rule on each of panels equal pieces of
// [a, b]. Non-finite samples contribute nothing.
func gaussLegendre(f func(float64) float64, a, b float64, panels int) float64 {
	h := (b - a) / float64(panels)
	sum := 0.0
	for k := 0; k < panels; k++ {
		lo := a + h*float64(k)
		mid, half := lo+h/2, h/2
		for i, t := range glNodes {
			for _, s := range []float64{-t, t} {
				if v := f(mid + half*s); finite(v) {
					sum += glWeights[i] * half * v
				}
			}
		}
	}
	return sum
}
