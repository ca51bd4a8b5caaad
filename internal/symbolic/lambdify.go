package symbolic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Numeric is an expression compiled for fast repeated evaluation over
// float64 inputs. Evaluation never fails: points outside the domain yield
// NaN and poles yield ±Inf.
type Numeric struct {
	vars   []string
	source string
	expr   *govaluate.EvaluableExpression
}

var numericFuncs = map[string]govaluate.ExpressionFunction{}

func init() {
	for _, name := range []string{"sin", "cos", "tan", "exp", "log", "Abs", "asin", "acos", "atan", "sinh", "cosh", "tanh"} {
		name := name
		numericFuncs[name] = func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s takes one argument, got %d", name, len(args))
			}
			x, ok := args[0].(float64)
			if !ok {
				return math.NaN(), nil
			}
			return applyFloat(name, x), nil
		}
	}
}

// Lambdify compiles e into a function of vars, in order. Every free symbol
// of e must be listed.
func Lambdify(e Expr, vars ...string) (*Numeric, error) {
	bound := make(map[string]bool, len(vars))
	for _, v := range vars {
		bound[v] = true
	}
	for _, name := range FreeSymbols(e) {
		if !bound[name] {
			return nil, fmt.Errorf("lambdify %s: unbound symbol %q", e, name)
		}
	}
	var sb strings.Builder
	if err := emit(&sb, e); err != nil {
		return nil, fmt.Errorf("lambdify %s: %w", e, err)
	}
	src := sb.String()
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(src, numericFuncs)
	if err != nil {
		return nil, fmt.Errorf("lambdify %s: %w", e, err)
	}
	return &Numeric{vars: vars, source: src, expr: compiled}, nil
}

func emit(sb *strings.Builder, e Expr) error {
	switch v := e.(type) {
	case *Num:
		sb.WriteString(floatLiteral(v.Float64()))
	case *Const:
		sb.WriteString(floatLiteral(v.val))
	case *Sym:
		sb.WriteString("[" + v.name + "]")
	case *Inf:
		return fmt.Errorf("cannot evaluate %s numerically", v)
	case *Add:
		return emitJoined(sb, v.terms, " + ")
	case *Mul:
		return emitJoined(sb, v.factors, " * ")
	case *Pow:
		return emitJoined(sb, []Expr{v.base, v.exp}, " ** ")
	case *Func:
		sb.WriteString(v.name + "(")
		if err := emit(sb, v.arg); err != nil {
			return err
		}
		sb.WriteString(")")
	default:
		return fmt.Errorf("unsupported node %T", e)
	}
	return nil
}

func emitJoined(sb *strings.Builder, parts []Expr, op string) error {
	sb.WriteString("(")
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(op)
		}
		if err := emit(sb, p); err != nil {
			return err
		}
	}
	sb.WriteString(")")
	return nil
}

func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f < 0 {
		return "(" + s + ")"
	}
	return s
}

// Vars returns the argument order of the compiled function.
func (n *Numeric) Vars() []string { return n.vars }

// Source returns the compiled evaluator expression.
func (n *Numeric) Source() string { return n.source }

// At evaluates the function at one point.
func (n *Numeric) At(args ...float64) float64 {
	params := make(map[string]interface{}, len(n.vars))
	for i, name := range n.vars {
		if i < len(args) {
			params[name] = args[i]
		}
	}
	out, err := n.expr.Evaluate(params)
	if err != nil {
		return math.NaN()
	}
	f, ok := out.(float64)
	if !ok {
		return math.NaN()
	}
	return f
}

// Apply evaluates a function of one variable at every x.
func (n *Numeric) Apply(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = n.At(x)
	}
	return ys
}

// Apply2 evaluates a function of two variables pointwise over xs and ys.
func (n *Numeric) Apply2(xs, ys []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		out[i] = n.At(xs[i], ys[i])
	}
	return out
}
