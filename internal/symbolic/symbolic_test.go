package symbolic_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcdeck/internal/symbolic"
)

// ============================================================
// Parsing and printing
// ============================================================

func TestParse_Printing(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"x**2 + 3*x - 1", "x**2 + 3*x - 1"},
		{"x^2", "x**2"},
		{"2*x*3", "6*x"},
		{"x/2", "x/2"},
		{"1/x", "1/x"},
		{"sqrt(x)", "sqrt(x)"},
		{"-sin(x)", "-sin(x)"},
		{"sin(-x)", "-sin(x)"},
		{"cos(-x)", "cos(x)"},
		{"ln(x)", "log(x)"},
		{"0.5*x", "x/2"},
		{"x + x", "2*x"},
		{"x - x", "0"},
		{"sin(pi)", "0"},
		{"exp(log(x))", "x"},
	}
	for _, tt := range tests {
		e, err := symbolic.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, e.String(), tt.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "2x", "sin", "foo(x)", "(x + 1", "x + ", "x $ 2", "*x"} {
		_, err := symbolic.Parse(in)
		var perr *symbolic.ParseError
		require.ErrorAs(t, err, &perr, "input %q", in)
		assert.Equal(t, in, perr.Input)
	}
}

func TestIdentifiers(t *testing.T) {
	assert.True(t, symbolic.IsIdentifier("x"))
	assert.True(t, symbolic.IsIdentifier("t2"))
	assert.False(t, symbolic.IsIdentifier("2t"))
	assert.False(t, symbolic.IsIdentifier(""))
	assert.False(t, symbolic.IsIdentifier("x y"))
	assert.True(t, symbolic.IsReserved("pi"))
	assert.True(t, symbolic.IsReserved("sin"))
	assert.False(t, symbolic.IsReserved("y"))
}

// ============================================================
// Differentiation
// ============================================================

func TestDiff(t *testing.T) {
	eng := symbolic.NewEngine()
	tests := []struct {
		f, x, want string
	}{
		{"x**2", "x", "2*x"},
		{"log(x)", "x", "1/x"},
		{"sin(x)", "x", "cos(x)"},
		{"x**2*y", "y", "x**2"},
		{"5", "x", "0"},
		{"exp(2*x)", "x", "2*exp(2*x)"},
	}
	for _, tt := range tests {
		got := eng.Diff(symbolic.MustParse(tt.f), tt.x)
		assert.Equal(t, tt.want, got.String(), "d/d%s %s", tt.x, tt.f)
	}
}

func TestDiff_ProductRule(t *testing.T) {
	eng := symbolic.NewEngine()
	got := eng.Diff(symbolic.MustParse("x*sin(x)"), "x")
	assert.True(t, symbolic.Equivalent(got, symbolic.MustParse("sin(x) + x*cos(x)")), got.String())
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		f, want string
	}{
		{"Abs(x)", "x/Abs(x)"},
		{"pi*x**2", "2*pi*x"},
		{"E*x", "E"},
		{"sqrt(x**2)", "x/Abs(x)"},
		{"atan(2*x)", "2/(1 + 4*x**2)"},
		{"x**3*sin(x)", "3*x**2*sin(x) + x**3*cos(x)"},
	}
	for _, tt := range tests {
		got := symbolic.Derivative(symbolic.MustParse(tt.f), "x")
		assert.True(t, symbolic.Equivalent(got, symbolic.MustParse(tt.want)), "d/dx %s = %s", tt.f, got)
	}
}

// ============================================================
// Integration
// ============================================================

func TestIntegrate_Printing(t *testing.T) {
	tests := []struct {
		f, want string
	}{
		{"x**3", "x**4/4"},
		{"sin(x)", "-cos(x)"},
		{"x", "x**2/2"},
		{"3", "3*x"},
	}
	for _, tt := range tests {
		got, err := symbolic.Integrate(symbolic.MustParse(tt.f), "x")
		require.NoError(t, err, tt.f)
		assert.Equal(t, tt.want, got.String(), tt.f)
	}
}

func TestIntegrate_RoundTrip(t *testing.T) {
	for _, f := range []string{
		"x**2 + 3*x",
		"x*exp(x)",
		"x*sin(x)",
		"x*exp(x**2)",
		"sin(x)*cos(x)",
		"1/(x**2 + 1)",
		"cos(2*x + 1)",
		"log(x)",
		"1/(2*x + 3)",
		"sqrt(x)",
		"exp(3*x)",
		"x*log(x)",
		"sin(x)**2",
		"tan(x)",
		"atan(x)",
		"2**x",
		"(x + 1)**3",
	} {
		e := symbolic.MustParse(f)
		anti, err := symbolic.Integrate(e, "x")
		require.NoError(t, err, f)
		back := anti.Diff("x")
		assert.True(t, symbolic.Equivalent(back, e), "d/dx %s = %s, want %s", anti, back, f)
	}
}

func TestIntegrate_NoClosedForm(t *testing.T) {
	_, err := symbolic.Integrate(symbolic.MustParse("exp(-x**2)"), "x")
	require.ErrorIs(t, err, symbolic.ErrNoClosedForm)
}

func TestDefiniteIntegral(t *testing.T) {
	tests := []struct {
		f, lo, hi, want string
	}{
		{"x", "0", "2", "2"},
		{"sin(x)", "0", "pi", "2"},
		{"log(Abs(x))", "-1", "1", "-2"},
		{"x", "2", "0", "-2"},
		{"x**2", "1", "1", "0"},
		{"1/sqrt(x)", "0", "1", "2"},
	}
	for _, tt := range tests {
		got, err := symbolic.DefiniteIntegral(symbolic.MustParse(tt.f), "x", symbolic.MustParse(tt.lo), symbolic.MustParse(tt.hi))
		require.NoError(t, err, tt.f)
		assert.Equal(t, tt.want, got.String(), "integral of %s over [%s, %s]", tt.f, tt.lo, tt.hi)
	}
}

func TestDefiniteIntegral_Divergent(t *testing.T) {
	tests := []struct {
		f      string
		lo, hi int64
	}{
		{"1/x", -1, 1},
		{"1/x**2", -1, 1},
		// Poles between scan samples.
		{"1/x", -1, 2},
		{"1/x**2", -1, 2},
		{"tan(x)", 0, 3},
		{"1/(x - 1/3)", 0, 1},
	}
	for _, tt := range tests {
		_, err := symbolic.DefiniteIntegral(symbolic.MustParse(tt.f), "x", symbolic.N(tt.lo), symbolic.N(tt.hi))
		require.ErrorIs(t, err, symbolic.ErrDivergent, "%s on [%d, %d]", tt.f, tt.lo, tt.hi)
	}
}

func TestDefiniteIntegral_IntegrableOffGridSingularity(t *testing.T) {
	got, err := symbolic.DefiniteIntegral(symbolic.MustParse("log(Abs(x))"), "x", symbolic.N(-1), symbolic.N(2))
	require.NoError(t, err)
	v, ok := symbolic.Value(got)
	require.True(t, ok)
	assert.InDelta(t, 2*math.Log(2)-3, v, 1e-9)
}

func TestDefiniteIntegral_NumericFallback(t *testing.T) {
	got, err := symbolic.DefiniteIntegral(symbolic.MustParse("exp(-x**2)"), "x", symbolic.N(0), symbolic.N(1))
	require.NoError(t, err)
	v, ok := symbolic.Value(got)
	require.True(t, ok)
	assert.InDelta(t, 0.746824132812427, v, 1e-9)
}

func TestDefiniteIntegral_InfiniteBound(t *testing.T) {
	_, err := symbolic.DefiniteIntegral(symbolic.MustParse("x"), "x", symbolic.N(0), symbolic.Oo)
	require.ErrorIs(t, err, symbolic.ErrBounds)
}

// ============================================================
// Limits
// ============================================================

func TestLimit(t *testing.T) {
	tests := []struct {
		f     string
		point symbolic.Expr
		dir   symbolic.Direction
		want  string
	}{
		{"sin(x)/x", symbolic.N(0), symbolic.Both, "1"},
		{"(x**2 - 1)/(x - 1)", symbolic.N(1), symbolic.Both, "2"},
		{"x**2", symbolic.N(3), symbolic.Both, "9"},
		{"1/x**2", symbolic.N(0), symbolic.Both, "oo"},
		{"1/x", symbolic.N(0), symbolic.Plus, "oo"},
		{"1/x", symbolic.N(0), symbolic.Minus, "-oo"},
		{"x/(x + 1)", symbolic.Oo, symbolic.Both, "1"},
		{"1/x", symbolic.NegOo, symbolic.Both, "0"},
		{"atan(x)", symbolic.Oo, symbolic.Both, "pi/2"},
		{"(1 - cos(x))/x**2", symbolic.N(0), symbolic.Both, "1/2"},
		{"a/x", symbolic.N(1), symbolic.Both, "a"},
		{"(1 + 1/x)**x", symbolic.Oo, symbolic.Both, "E"},
	}
	for _, tt := range tests {
		got, err := symbolic.LimitDir(symbolic.MustParse(tt.f), "x", tt.point, tt.dir)
		require.NoError(t, err, tt.f)
		assert.Equal(t, tt.want, got.String(), "limit of %s at %s%s", tt.f, tt.point, tt.dir)
	}
}

func TestLimit_Undefined(t *testing.T) {
	for _, f := range []string{"1/x", "Abs(x)/x", "sin(1/x)"} {
		_, err := symbolic.Limit(symbolic.MustParse(f), "x", symbolic.N(0))
		require.ErrorIs(t, err, symbolic.ErrUndefinedLimit, f)
	}
}

// ============================================================
// Numeric compilation
// ============================================================

func TestLambdify(t *testing.T) {
	fn, err := symbolic.Lambdify(symbolic.MustParse("x**2 - 2*x + sin(pi*x)"), "x")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, fn.At(3), 1e-12)
	assert.InDelta(t, 0.0, fn.At(0), 1e-12)

	inv, err := symbolic.Lambdify(symbolic.MustParse("1/x"), "x")
	require.NoError(t, err)
	assert.True(t, math.IsInf(inv.At(0), 1))

	root, err := symbolic.Lambdify(symbolic.MustParse("sqrt(x)"), "x")
	require.NoError(t, err)
	ys := root.Apply([]float64{-1, 0, 4})
	assert.True(t, math.IsNaN(ys[0]))
	assert.Equal(t, []float64{0, 2}, ys[1:])

	prod, err := symbolic.Lambdify(symbolic.MustParse("x*y + 1"), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 1}, prod.Apply2([]float64{2, 0}, []float64{3, 5}))
}

func TestLambdify_Unbound(t *testing.T) {
	_, err := symbolic.Lambdify(symbolic.MustParse("x + y"), "x")
	require.Error(t, err)
	_, err = symbolic.Lambdify(symbolic.Oo)
	require.Error(t, err)
}

func TestEquivalent(t *testing.T) {
	assert.True(t, symbolic.Equivalent(symbolic.MustParse("sin(x)**2 + cos(x)**2"), symbolic.N(1)))
	assert.True(t, symbolic.Equivalent(symbolic.MustParse("(x + 1)**2"), symbolic.MustParse("x**2 + 2*x + 1")))
	assert.False(t, symbolic.Equivalent(symbolic.MustParse("x"), symbolic.MustParse("x + 1")))
}

func TestEngine_Sub(t *testing.T) {
	eng := symbolic.NewEngine()
	f := symbolic.MustParse("x**2 + y")
	assert.True(t, symbolic.Equivalent(symbolic.MustParse("y + 9"), eng.Sub(f, "x", symbolic.N(3))))
	assert.True(t, symbolic.Equivalent(symbolic.MustParse("x**2 + 1"), eng.Sub(f, "y", symbolic.N(1))))
	assert.Equal(t, "0", eng.Sub(symbolic.MustParse("sin(x)"), "x", symbolic.Pi).String())
}
