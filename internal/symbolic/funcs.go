package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) Expr { return (&Func{name: name, arg: arg}).Simplify() }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg) }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg) }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg) }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg) }
func LogOf(arg Expr) Expr  { return funcOf("log", arg) }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("Abs", arg) }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg) }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg) }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg) }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg) }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg) }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg) }

// builtins maps every accepted spelling to its constructor.
var builtins = map[string]func(Expr) Expr{
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
	"exp":  ExpOf,
	"log":  LogOf,
	"ln":   LogOf,
	"sqrt": SqrtOf,
	"Abs":  AbsOf,
	"abs":  AbsOf,
	"asin": AsinOf,
	"acos": AcosOf,
	"atan": AtanOf,
	"sinh": SinhOf,
	"cosh": CoshOf,
	"tanh": TanhOf,
}

// IsBuiltin reports whether name is a function the parser understands.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true, "Abs": true}
)

func (f *Func) Name() string { return f.name }
func (f *Func) Arg() Expr    { return f.arg }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if v, ok := specialValue(f.name, arg); ok {
		return v
	}

	if m, ok := arg.(*Mul); ok {
		if c, _ := extractCoefficient(m); c.IsNegative() {
			pos := Neg(m)
			switch {
			case oddFuncs[f.name]:
				return Neg(funcOf(f.name, pos))
			case evenFuncs[f.name]:
				return funcOf(f.name, pos)
			}
		}
	}

	if len(FreeSymbols(arg)) == 0 {
		if x, ok := arg.Eval(nil); ok {
			if r := applyFloat(f.name, x); finite(r) {
				return NFloat(r)
			}
		}
		return &Func{name: f.name, arg: arg}
	}

	switch f.name {
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "Abs":
		if inner, ok := arg.(*Func); ok && inner.name == "Abs" {
			return inner
		}
	}
	return &Func{name: f.name, arg: arg}
}

// specialValue returns exact results at the points people expect to see
// printed exactly: zero, the multiples of pi/2, 1 and E.
func specialValue(name string, arg Expr) (Expr, bool) {
	if n, ok := arg.(*Num); ok && !n.approx {
		switch {
		case n.IsZero():
			switch name {
			case "sin", "tan", "asin", "atan", "sinh", "tanh", "Abs":
				return N(0), true
			case "cos", "cosh", "exp":
				return N(1), true
			}
		case n.IsOne():
			switch name {
			case "log", "acos":
				return N(0), true
			}
		}
		if name == "Abs" {
			if n.IsNegative() {
				return numNeg(n), true
			}
			return n, true
		}
	}
	if c, ok := arg.(*Const); ok {
		switch {
		case name == "Abs":
			return c, true
		case name == "log" && c == E:
			return N(1), true
		}
	}
	if k, ok := halfPiMultiple(arg); ok {
		switch name {
		case "sin":
			return N([]int64{0, 1, 0, -1}[k]), true
		case "cos":
			return N([]int64{1, 0, -1, 0}[k]), true
		case "tan":
			if k%2 == 0 {
				return N(0), true
			}
		}
	}
	return nil, false
}

// halfPiMultiple matches arg = m·pi/2 for integer m and returns m mod 4.
func halfPiMultiple(arg Expr) (int, bool) {
	var coeff *big.Rat
	switch v := arg.(type) {
	case *Const:
		if v != Pi {
			return 0, false
		}
		coeff = big.NewRat(1, 1)
	case *Mul:
		c, rest := extractCoefficient(v)
		if rest != Expr(Pi) || c.approx {
			return 0, false
		}
		coeff = c.val
	default:
		return 0, false
	}
	twice := new(big.Rat).Mul(coeff, big.NewRat(2, 1))
	if !twice.IsInt() {
		return 0, false
	}
	m := new(big.Int).Mod(twice.Num(), big.NewInt(4))
	return int(m.Int64()), true
}

func applyFloat(name string, x float64) float64 {
	switch name {
	case "sin":
		return math.Sin(x)
	case "cos":
		return math.Cos(x)
	case "tan":
		return math.Tan(x)
	case "exp":
		return math.Exp(x)
	case "log":
		return math.Log(x)
	case "Abs":
		return math.Abs(x)
	case "asin":
		return math.Asin(x)
	case "acos":
		return math.Acos(x)
	case "atan":
		return math.Atan(x)
	case "sinh":
		return math.Sinh(x)
	case "cosh":
		return math.Cosh(x)
	case "tanh":
		return math.Tanh(x)
	}
	return math.NaN()
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(name string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(name, value))
}

func (f *Func) Diff(name string) Expr {
	du := f.arg.Diff(name)
	if IsZero(du) {
		return N(0)
	}
	u := f.arg
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = Neg(SinOf(u))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(u), N(2)))
	case "exp":
		outer = ExpOf(u)
	case "log":
		outer = PowOf(u, N(-1))
	case "Abs":
		outer = DivOf(u, AbsOf(u))
	case "asin":
		outer = PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2))
	case "acos":
		outer = Neg(PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(u)
	case "cosh":
		outer = SinhOf(u)
	case "tanh":
		outer = SubOf(N(1), PowOf(TanhOf(u), N(2)))
	default:
		return N(0)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval(env map[string]float64) (float64, bool) {
	x, ok := f.arg.Eval(env)
	if !ok {
		return 0, false
	}
	return applyFloat(f.name, x), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}
