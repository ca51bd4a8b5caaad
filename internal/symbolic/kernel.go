package symbolic

import (
	"math"

	"github.com/njchilds90/gosymbol"
)

// ============================================================
// gosymbol bridge
// ============================================================

// gosymbol does the differentiation, the table integrals and the exact
// limits. Its tree cannot carry pi, E, oo or approximate numbers and it
// prints in its own syntax, so expressions cross over only while they are
// exact and come back through the local constructors.

var kernelFuncs = map[string]func(gosymbol.Expr) gosymbol.Expr{
	"sin":  gosymbol.SinOf,
	"cos":  gosymbol.CosOf,
	"tan":  gosymbol.TanOf,
	"exp":  gosymbol.ExpOf,
	"log":  gosymbol.LnOf,
	"Abs":  gosymbol.AbsOf,
	"asin": gosymbol.AsinOf,
	"acos": gosymbol.AcosOf,
	"atan": gosymbol.AtanOf,
	"sinh": gosymbol.SinhOf,
	"cosh": gosymbol.CoshOf,
	"tanh": gosymbol.TanhOf,
}

var localFuncs = map[string]func(Expr) Expr{
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
	"exp":  ExpOf,
	"ln":   LogOf,
	"abs":  AbsOf,
	"asin": AsinOf,
	"acos": AcosOf,
	"atan": AtanOf,
	"sinh": SinhOf,
	"cosh": CoshOf,
	"tanh": TanhOf,
}

// Kernel infinities are constant nodes with these names.
const (
	kernelInf    = "inf"
	kernelNegInf = "-inf"
)

// toKernel converts e for gosymbol. ok is false for infinities,
// approximate numbers and nested fractional powers, which gosymbol would
// collapse: (x**2)**(1/2) becomes x there.
func toKernel(e Expr) (gosymbol.Expr, bool) {
	switch v := e.(type) {
	case *Num:
		if v.approx || !v.val.Num().IsInt64() || !v.val.Denom().IsInt64() {
			return nil, false
		}
		return gosymbol.F(v.val.Num().Int64(), v.val.Denom().Int64()), true
	case *Sym:
		return gosymbol.S(v.name), true
	case *Const:
		// pi and E are reserved, so a kernel symbol with that name is
		// always the constant.
		return gosymbol.S(v.name), true
	case *Add:
		terms, ok := toKernelAll(v.terms)
		if !ok {
			return nil, false
		}
		return gosymbol.AddOf(terms...), true
	case *Mul:
		factors, ok := toKernelAll(v.factors)
		if !ok {
			return nil, false
		}
		return gosymbol.MulOf(factors...), true
	case *Pow:
		if _, nested := v.base.(*Pow); nested {
			if n, ok := v.exp.(*Num); !ok || !n.IsInteger() {
				return nil, false
			}
		}
		base, ok := toKernel(v.base)
		if !ok {
			return nil, false
		}
		exp, ok := toKernel(v.exp)
		if !ok {
			return nil, false
		}
		return gosymbol.PowOf(base, exp), true
	case *Func:
		mk, ok := kernelFuncs[v.name]
		if !ok {
			return nil, false
		}
		arg, ok := toKernel(v.arg)
		if !ok {
			return nil, false
		}
		return mk(arg), true
	}
	return nil, false
}

func toKernelAll(es []Expr) ([]gosymbol.Expr, bool) {
	out := make([]gosymbol.Expr, len(es))
	for i, e := range es {
		k, ok := toKernel(e)
		if !ok {
			return nil, false
		}
		out[i] = k
	}
	return out, true
}

// fromKernel rebuilds a gosymbol result as a local expression. gosymbol
// folds functions of numbers into float-derived rationals such as
// 6243314768165359/9007199254740992; those have no exact meaning and are
// refused.
func fromKernel(k gosymbol.Expr) (Expr, bool) {
	switch v := k.(type) {
	case *gosymbol.Num:
		r := v.Rat()
		if r.Denom().BitLen() > 32 || r.Num().BitLen() > 62 {
			return nil, false
		}
		return &Num{val: r}, true
	case *gosymbol.Sym:
		switch v.Name() {
		case Pi.name:
			return Pi, true
		case E.name:
			return E, true
		}
		return S(v.Name()), true
	case *gosymbol.ConstantNode:
		switch v.String() {
		case kernelInf:
			return Oo, true
		case kernelNegInf:
			return NegOo, true
		}
	case *gosymbol.Add:
		terms, ok := fromKernelAll(v.Terms())
		if !ok {
			return nil, false
		}
		return AddOf(terms...), true
	case *gosymbol.Mul:
		factors, ok := fromKernelAll(v.Factors())
		if !ok {
			return nil, false
		}
		return MulOf(factors...), true
	case *gosymbol.Pow:
		base, ok := fromKernel(v.Base())
		if !ok {
			return nil, false
		}
		exp, ok := fromKernel(v.ExpExpr())
		if !ok {
			return nil, false
		}
		return PowOf(base, exp), true
	case *gosymbol.Func:
		arg, ok := fromKernel(v.Arg())
		if !ok {
			return nil, false
		}
		// gosymbol leaves d|u|/du as the placeholder D[abs](u).
		if v.FuncName() == "D[abs]" {
			return DivOf(arg, AbsOf(arg)), true
		}
		mk, ok := localFuncs[v.FuncName()]
		if !ok {
			return nil, false
		}
		return mk(arg), true
	}
	return nil, false
}

func fromKernelAll(ks []gosymbol.Expr) ([]Expr, bool) {
	out := make([]Expr, len(ks))
	for i, k := range ks {
		e, ok := fromKernel(k)
		if !ok {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}

// kernel runs fn against gosymbol. gosymbol panics on some degenerate
// input (a zero denominator in F or Cancel); that counts as a miss.
func kernel(fn func() (gosymbol.Expr, bool)) (r Expr, ok bool) {
	defer func() {
		if recover() != nil {
			r, ok = nil, false
		}
	}()
	k, ok := fn()
	if !ok || k == nil {
		return nil, false
	}
	return fromKernel(k)
}

// ============================================================
// Kernel-backed operations
// ============================================================

// Derivative returns the simplified derivative of e with respect to x.
func Derivative(e Expr, x string) Expr {
	if k, ok := toKernel(e); ok {
		if d, ok := kernel(func() (gosymbol.Expr, bool) { return gosymbol.Diff(k, x), true }); ok {
			return Simplify(d)
		}
	}
	return Simplify(e.Diff(x))
}

// kernelIntegral looks e up in gosymbol's integral table: powers of x,
// exponentials, and the elementary functions of c*x, with numeric
// coefficients and sums of those.
func kernelIntegral(e Expr, x string) (Expr, bool) {
	k, ok := toKernel(e)
	if !ok {
		return nil, false
	}
	return kernel(func() (gosymbol.Expr, bool) { return gosymbol.Integrate(k, x) })
}

// kernelLimit asks gosymbol for the limit. gosymbol substitutes into the
// simplified expression and can accept a removable singularity as the
// value (it reports 0 for (1 - cos(x))/x**2 at 0), so the answer is kept
// only when sampling e toward the point agrees with it.
func kernelLimit(e Expr, x string, point Expr, dir Direction) (Expr, bool) {
	k, ok := toKernel(e)
	if !ok {
		return nil, false
	}
	var at gosymbol.Expr
	if inf, isInf := point.(*Inf); isInf {
		name := kernelInf
		if inf.sign < 0 {
			name = kernelNegInf
		}
		at = gosymbol.CreateConstantNode(name)
	} else if at, ok = toKernel(point); !ok {
		return nil, false
	}
	l, ok := kernel(func() (gosymbol.Expr, bool) {
		res := gosymbol.LimitWithDirection(k, x, at, dir.kernel())
		return res.Value, res.Success
	})
	if !ok || !confirms(e, x, point, dir, l) {
		return nil, false
	}
	return Simplify(l), true
}

func (d Direction) kernel() string {
	switch d {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return ""
}

// confirms samples e at two points closing in on point from each side in
// dir and checks that they sit near l, or run off toward it when l is
// infinite. Expressions with parameters cannot be sampled and are taken as
// given.
func confirms(e Expr, x string, point Expr, dir Direction, l Expr) bool {
	for _, name := range FreeSymbols(e) {
		if name != x {
			return true
		}
	}
	sides := []Direction{dir}
	if dir == Both {
		sides = []Direction{Minus, Plus}
	}
	for _, side := range sides {
		var vals [2]float64
		for i, t := range closingIn(point, side) {
			v, ok := e.Eval(map[string]float64{x: t})
			if !ok || math.IsNaN(v) {
				return false
			}
			vals[i] = v
		}
		if inf, ok := l.(*Inf); ok {
			s := float64(inf.sign)
			if vals[0]*s <= 1e3 || vals[1]*s <= vals[0]*s {
				return false
			}
			continue
		}
		lv, ok := Value(l)
		if !ok || !finite(lv) {
			return false
		}
		for _, v := range vals {
			if !finite(v) || math.Abs(v-lv) > 1e-3*math.Max(1, math.Abs(lv)) {
				return false
			}
		}
	}
	return true
}

func closingIn(point Expr, side Direction) [2]float64 {
	if inf, ok := point.(*Inf); ok {
		s := float64(inf.sign)
		return [2]float64{s * 1e5, s * 1e6}
	}
	p, _ := Value(point)
	s := 1.0
	if side == Minus {
		s = -1
	}
	scale := math.Max(1, math.Abs(p))
	return [2]float64{p + s*1e-4*scale, p + s*1e-5*scale}
}
