// Package symbolic is a small computer-algebra kernel: exact rational
// arithmetic, a parser for the usual calculator syntax, simplification,
// differentiation, rule-based integration, limits, and compilation of an
// expression into a vectorized numeric function.
package symbolic

import (
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Core interface
// ============================================================

// Expr is an immutable expression tree node.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(name string, value Expr) Expr
	Diff(name string) Expr
	// Eval walks the tree without simplifying it. ok is false when a free
	// symbol has no binding in env; the value itself may be NaN or ±Inf.
	Eval(env map[string]float64) (float64, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num: rational number, optionally flagged as approximate
// ============================================================

type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a finite float. The result prints in decimal form.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("symbolic: NFloat of non-finite value")
	}
	return &Num{val: new(big.Rat).SetFloat64(f), approx: true}
}

func (n *Num) Simplify() Expr                         { return n }
func (n *Num) Sub(string, Expr) Expr                  { return n }
func (n *Num) Diff(string) Expr                       { return N(0) }
func (n *Num) Eval(map[string]float64) (float64, bool) { return n.Float64(), true }
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}
func (n *Num) Float64() float64  { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool      { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool       { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool    { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool   { return n.val.IsInt() }
func (n *Num) IsPositive() bool  { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool  { return n.val.Sign() < 0 }
func (n *Num) IsApprox() bool    { return n.approx }
func (n *Num) Rat() *big.Rat     { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.approx {
		return strconv.FormatFloat(n.Float64(), 'g', 10, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx}
}

func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx}
}

func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: reciprocal of zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), approx: a.approx}
}

// numPow raises b to e when the result stays rational, or when either side
// is already approximate.
func numPow(b, e *Num) (*Num, bool) {
	if b.approx || e.approx {
		r := math.Pow(b.Float64(), e.Float64())
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, false
		}
		return NFloat(r), true
	}
	if e.IsInteger() {
		k := e.val.Num()
		if !k.IsInt64() || k.Int64() > 256 || k.Int64() < -256 {
			return nil, false
		}
		p := k.Int64()
		if p < 0 && b.IsZero() {
			return nil, false
		}
		neg := p < 0
		if neg {
			p = -p
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(p), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(p), nil)
		r := &Num{val: new(big.Rat).SetFrac(num, den)}
		if neg {
			r = numRecip(r)
		}
		return r, true
	}
	// Exact square roots of non-negative rationals.
	if e.val.Denom().Cmp(big.NewInt(2)) != 0 || b.IsNegative() {
		return nil, false
	}
	rn, okN := exactSqrt(b.val.Num())
	rd, okD := exactSqrt(b.val.Denom())
	if !okN || !okD {
		return nil, false
	}
	root := &Num{val: new(big.Rat).SetFrac(rn, rd)}
	return numPow(root, &Num{val: new(big.Rat).SetInt(e.val.Num())})
}

func exactSqrt(v *big.Int) (*big.Int, bool) {
	r := new(big.Int).Sqrt(v)
	return r, new(big.Int).Mul(r, r).Cmp(v) == 0
}

// ============================================================
// Sym: free variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) Eval(env map[string]float64) (float64, bool) {
	v, ok := env[s.name]
	return v, ok
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const: named transcendental constants
// ============================================================

type Const struct {
	name string
	val  float64
}

var (
	Pi = &Const{name: "pi", val: math.Pi}
	E  = &Const{name: "E", val: math.E}
)

func (c *Const) Simplify() Expr                         { return c }
func (c *Const) String() string                         { return c.name }
func (c *Const) Sub(string, Expr) Expr                  { return c }
func (c *Const) Diff(string) Expr                       { return N(0) }
func (c *Const) Eval(map[string]float64) (float64, bool) { return c.val, true }
func (c *Const) Equal(other Expr) bool                  { o, ok := other.(*Const); return ok && c.name == o.name }

// ============================================================
// Inf: signed infinity, only meaningful as a limit point or value
// ============================================================

type Inf struct{ sign int }

var (
	Oo    = &Inf{sign: 1}
	NegOo = &Inf{sign: -1}
)

func (i *Inf) Simplify() Expr        { return i }
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) Sign() int             { return i.sign }
func (i *Inf) Eval(map[string]float64) (float64, bool) {
	return math.Inf(i.sign), true
}
func (i *Inf) Equal(other Expr) bool { o, ok := other.(*Inf); return ok && i.sign == o.sign }

func (i *Inf) String() string {
	if i.sign < 0 {
		return "-oo"
	}
	return "oo"
}

// ============================================================
// Helpers
// ============================================================

func Neg(e Expr) Expr       { return MulOf(N(-1), e) }
func SubOf(a, b Expr) Expr  { return AddOf(a, Neg(b)) }
func DivOf(a, b Expr) Expr  { return MulOf(a, PowOf(b, N(-1))) }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// IsZero reports whether e is the exact number zero.
func IsZero(e Expr) bool { return isNumEqual(e, 0) }

// Value evaluates an expression with no free symbols.
func Value(e Expr) (float64, bool) { return e.Eval(nil) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
