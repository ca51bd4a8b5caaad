package calc_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcdeck/internal/calc"
	"calcdeck/internal/plot"
	"calcdeck/internal/symbolic"
)

// countingEngine forwards to the real engine and counts every call.
type countingEngine struct {
	inner *symbolic.Engine
	calls int
}

func (c *countingEngine) Parse(text string) (symbolic.Expr, error) {
	c.calls++
	return c.inner.Parse(text)
}

func (c *countingEngine) Diff(e symbolic.Expr, x string) symbolic.Expr {
	c.calls++
	return c.inner.Diff(e, x)
}

func (c *countingEngine) Integrate(e symbolic.Expr, x string) (symbolic.Expr, error) {
	c.calls++
	return c.inner.Integrate(e, x)
}

func (c *countingEngine) DefiniteIntegral(e symbolic.Expr, x string, lo, hi symbolic.Expr) (symbolic.Expr, error) {
	c.calls++
	return c.inner.DefiniteIntegral(e, x, lo, hi)
}

func (c *countingEngine) Limit(e symbolic.Expr, x string, point symbolic.Expr) (symbolic.Expr, error) {
	c.calls++
	return c.inner.Limit(e, x, point)
}

func (c *countingEngine) Simplify(e symbolic.Expr) symbolic.Expr {
	c.calls++
	return c.inner.Simplify(e)
}

func (c *countingEngine) Lambdify(e symbolic.Expr, vars ...string) (*symbolic.Numeric, error) {
	c.calls++
	return c.inner.Lambdify(e, vars...)
}

func newDispatcher() (*calc.Dispatcher, *countingEngine) {
	eng := &countingEngine{inner: symbolic.NewEngine()}
	return calc.NewDispatcher(eng, plot.DefaultConfig(), nil), eng
}

func request(op calc.Operation, fields map[calc.Field]string) calc.Request {
	req := calc.NewRequest(op)
	for f, v := range fields {
		req = req.With(f, v)
	}
	return req
}

func value(t *testing.T, e symbolic.Expr) float64 {
	t.Helper()
	v, ok := symbolic.Value(e)
	require.True(t, ok, "value of %s", e)
	return v
}

func TestMissingFieldNeverReachesEngine(t *testing.T) {
	tests := []struct {
		op      calc.Operation
		fields  map[calc.Field]string
		missing []calc.Field
	}{
		{calc.Integral, map[calc.Field]string{calc.FieldVariable: "x"}, []calc.Field{calc.FieldFunction}},
		{calc.Limit, map[calc.Field]string{calc.FieldFunction: "x", calc.FieldVariable: "x"}, []calc.Field{calc.FieldLimitPoint}},
		{calc.Area, map[calc.Field]string{calc.FieldFunction: "x", calc.FieldVariable: "x"}, []calc.Field{calc.FieldLower, calc.FieldUpper}},
		{calc.PartialDerivative, map[calc.Field]string{calc.FieldFunction: "x*y", calc.FieldVariable: "x", calc.FieldVariable2: "  "}, []calc.Field{calc.FieldVariable2}},
		{calc.ChainRule, map[calc.Field]string{calc.FieldVariable: "x", calc.FieldOuter: "u**2"}, []calc.Field{calc.FieldInner}},
	}
	for _, tt := range tests {
		d, eng := newDispatcher()
		res, err := d.Calculate(request(tt.op, tt.fields))
		require.ErrorIs(t, err, calc.ErrMissingField, tt.op.String())
		var mf *calc.MissingFieldError
		require.ErrorAs(t, err, &mf)
		assert.Equal(t, tt.missing, mf.Fields)
		assert.Nil(t, res)
		assert.Zero(t, eng.calls, "%s called the engine", tt.op)
	}
}

func TestInvalidVariableNeverReachesEngine(t *testing.T) {
	for _, name := range []string{"2x", "pi", "sin", "x y"} {
		d, eng := newDispatcher()
		_, err := d.Calculate(request(calc.Derivative, map[calc.Field]string{calc.FieldFunction: "x", calc.FieldVariable: name}))
		require.ErrorIs(t, err, calc.ErrParse, name)
		assert.Zero(t, eng.calls)
	}
	d, _ := newDispatcher()
	_, err := d.Calculate(request(calc.ChainRule, map[calc.Field]string{calc.FieldVariable: "u", calc.FieldOuter: "u**2", calc.FieldInner: "sin(u)"}))
	require.ErrorIs(t, err, calc.ErrParse)
}

func TestParseErrorCarriesField(t *testing.T) {
	d, _ := newDispatcher()
	_, err := d.Calculate(request(calc.Area, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "2**(",
	}))
	var perr *calc.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, calc.FieldUpper, perr.Field)
	assert.Equal(t, "2**(", perr.Text)
	var serr *symbolic.ParseError
	assert.ErrorAs(t, err, &serr)
}

func TestIntegralRoundTrip(t *testing.T) {
	for _, f := range []string{"x**3 - 2*x + 7", "3*x**2", "sin(x)", "cos(3*x)", "sin(x)*cos(x)", "x*sin(x)"} {
		d, _ := newDispatcher()
		res, err := d.Calculate(request(calc.Integral, map[calc.Field]string{calc.FieldFunction: f, calc.FieldVariable: "x"}))
		require.NoError(t, err, f)
		assert.True(t, strings.HasPrefix(res.Text, "Integral: "))
		back := symbolic.NewEngine().Diff(res.Value, "x")
		assert.True(t, symbolic.Equivalent(back, symbolic.MustParse(f)), "d/dx %s != %s", res.Value, f)
		require.NotNil(t, res.Plot)
		assert.Equal(t, plot.DualCurve2D, res.Plot.Kind)
	}
}

func TestDerivative(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Derivative, map[calc.Field]string{calc.FieldFunction: "x**2", calc.FieldVariable: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "Derivative: 2*x", res.Text)
	assert.Len(t, res.Plot.Panels, 2)
	assert.Equal(t, 401, len(res.Plot.Panels[1].Series[0].Y))
}

func TestAreaOfLine(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Area, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "2",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Area: 2", res.Text)
	assert.Equal(t, 2.0, value(t, res.Value))
	require.NotNil(t, res.Plot)
	assert.True(t, res.Plot.Panels[0].Series[0].Fill)
	assert.Zero(t, res.Gaps)
}

func TestVolumeOfUnitCylinder(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Volume, map[calc.Field]string{
		calc.FieldFunction: "1", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "pi", res.Value.String())
	assert.InDelta(t, math.Pi, value(t, res.Value), 1e-12)
	assert.True(t, strings.HasPrefix(res.Text, "Volume: pi ≈ 3.14159"))
	require.NotNil(t, res.Plot)
	assert.Equal(t, plot.Surface3D, res.Plot.Kind)
	assert.Len(t, res.Plot.Surfaces[0].Z, 100)
}

func TestSurfaceArea(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.SurfaceArea, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "1",
	}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "Area of Revolution: "))
	assert.InDelta(t, math.Pi, value(t, res.Value), 1e-12)
}

func TestAverage(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Average, map[calc.Field]string{
		calc.FieldFunction: "x**2", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "3",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Average: 3", res.Text)
	require.Len(t, res.Plot.Panels[0].Guides, 1)
	assert.Equal(t, 3.0, res.Plot.Panels[0].Guides[0].Value)
	assert.Equal(t, 3.0, res.Plot.Panels[0].Series[0].Baseline)
}

func TestAverageEmptyIntervalIsDivisionByZero(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Average, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "2", calc.FieldUpper: "2",
	}))
	require.ErrorIs(t, err, calc.ErrDivisionByZero)
	assert.Nil(t, res)
	assert.Equal(t, "Average: division by zero", calc.Message(calc.Average, err))
}

func TestCentroid(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Centroid, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "2/3", res.Value.String())
	assert.Equal(t, "1/3", res.ValueY.String())
	assert.Equal(t, "Centroid: (x̄ = 2/3 ≈ 0.6666666667, ȳ = 1/3 ≈ 0.3333333333)", res.Text)
	require.Len(t, res.Plot.Panels[0].Markers, 1)

	_, err = d.Calculate(request(calc.Centroid, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldLower: "-1", calc.FieldUpper: "1",
	}))
	require.ErrorIs(t, err, calc.ErrDivisionByZero)
}

func TestCentroid_CancellingNumericMass(t *testing.T) {
	tests := []struct {
		f, lo, hi string
	}{
		{"sin(x**3)", "-1", "1"},
		{"x*exp(x**4)", "-2", "2"},
	}
	for _, tt := range tests {
		d, _ := newDispatcher()
		_, err := d.Calculate(request(calc.Centroid, map[calc.Field]string{
			calc.FieldFunction: tt.f, calc.FieldVariable: "x", calc.FieldLower: tt.lo, calc.FieldUpper: tt.hi,
		}))
		require.ErrorIs(t, err, calc.ErrDivisionByZero, tt.f)
		assert.Equal(t, "Centroid: division by zero", calc.Message(calc.Centroid, err))
	}
}

func TestLimits(t *testing.T) {
	tests := []struct {
		f, point, want string
	}{
		{"sin(x)/x", "0", "Limit: 1"},
		{"1/x**2", "0", "Limit: oo"},
		{"x/(x + 1)", "oo", "Limit: 1"},
		{"(x**2 - 4)/(x - 2)", "2", "Limit: 4"},
		{"a/x", "1", "Limit: a"},
	}
	for _, tt := range tests {
		d, _ := newDispatcher()
		res, err := d.Calculate(request(calc.Limit, map[calc.Field]string{
			calc.FieldFunction: tt.f, calc.FieldVariable: "x", calc.FieldLimitPoint: tt.point,
		}))
		require.NoError(t, err, tt.f)
		assert.Equal(t, tt.want, res.Text)
	}
}

func TestLimitMarker(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Limit, map[calc.Field]string{
		calc.FieldFunction: "sin(x)/x", calc.FieldVariable: "x", calc.FieldLimitPoint: "0",
	}))
	require.NoError(t, err)
	p := res.Plot.Panels[0]
	require.Len(t, p.Markers, 1)
	assert.Equal(t, plot.Marker{Label: "Limit: 1", X: 0, Y: 1}, p.Markers[0])
	xs := p.Series[0].X
	assert.Equal(t, -5.0, xs[0])
	assert.Equal(t, 5.0, xs[len(xs)-1])
	// sin(0)/0 is sampled exactly and shows up as a gap
	assert.Equal(t, 1, res.Gaps)
}

func TestLimitOfReciprocalIsUndefined(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Limit, map[calc.Field]string{
		calc.FieldFunction: "1/x", calc.FieldVariable: "x", calc.FieldLimitPoint: "0",
	}))
	require.ErrorIs(t, err, calc.ErrUndefined)
	assert.ErrorIs(t, err, symbolic.ErrUndefinedLimit)
	assert.Nil(t, res)
	assert.Equal(t, "Limit: undefined", calc.Message(calc.Limit, err))
}

func TestDivergentAreaIsUndefined(t *testing.T) {
	tests := []struct {
		f, lo, hi string
	}{
		{"1/x", "-1", "1"},
		{"1/x**2", "-1", "2"},
		{"tan(x)", "0", "3"},
	}
	for _, tt := range tests {
		d, _ := newDispatcher()
		_, err := d.Calculate(request(calc.Area, map[calc.Field]string{
			calc.FieldFunction: tt.f, calc.FieldVariable: "x", calc.FieldLower: tt.lo, calc.FieldUpper: tt.hi,
		}))
		require.ErrorIs(t, err, calc.ErrUndefined, "%s on [%s, %s]", tt.f, tt.lo, tt.hi)
		assert.Equal(t, "Area: undefined", calc.Message(calc.Area, err))
	}
}

func TestInfiniteBoundRejected(t *testing.T) {
	d, _ := newDispatcher()
	_, err := d.Calculate(request(calc.Area, map[calc.Field]string{
		calc.FieldFunction: "exp(-x)", calc.FieldVariable: "x", calc.FieldLower: "0", calc.FieldUpper: "oo",
	}))
	var perr *calc.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, calc.FieldUpper, perr.Field)
}

func TestChainRule(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.ChainRule, map[calc.Field]string{
		calc.FieldVariable: "x", calc.FieldOuter: "u**2", calc.FieldInner: "sin(x)",
	}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "Chain Rule Result: "))
	assert.True(t, symbolic.Equivalent(res.Value, symbolic.MustParse("2*sin(x)*cos(x)")), res.Value.String())
	require.NotNil(t, res.Plot)
	series := res.Plot.Panels[0].Series
	require.Len(t, series, 2)
	assert.Equal(t, "Outer Function: (sin(x))**2", series[0].Label)
	assert.True(t, series[1].Dashed)
}

func TestPartialDerivative(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.PartialDerivative, map[calc.Field]string{
		calc.FieldFunction: "x", calc.FieldVariable: "x", calc.FieldVariable2: "y",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Partial Derivative with respect to y: 0", res.Text)
	require.NotNil(t, res.Plot)
	assert.Equal(t, plot.DualSurface3D, res.Plot.Kind)
	dz := res.Plot.Surfaces[1].Z
	require.Len(t, dz, 61)
	for _, row := range dz {
		for _, v := range row {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestSamplingReciprocalHasGaps(t *testing.T) {
	fn, err := symbolic.Lambdify(symbolic.MustParse("1/x"), "x")
	require.NoError(t, err)
	var ys []float64
	require.NotPanics(t, func() { _, ys = plot.Curve(fn, -1, 1, plot.DefaultConfig().Samples) })
	gaps := 0
	for _, y := range ys {
		if math.IsInf(y, 0) || math.IsNaN(y) {
			gaps++
		}
	}
	assert.GreaterOrEqual(t, gaps, 1)

	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Integral, map[calc.Field]string{calc.FieldFunction: "1/x", calc.FieldVariable: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "Integral: log(Abs(x))", res.Text)
	assert.GreaterOrEqual(t, res.Gaps, 2)
}

func TestUnplottableResultStillSucceeds(t *testing.T) {
	d, _ := newDispatcher()
	res, err := d.Calculate(request(calc.Derivative, map[calc.Field]string{calc.FieldFunction: "x*y", calc.FieldVariable: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "Derivative: y", res.Text)
	assert.Nil(t, res.Plot)
	assert.Zero(t, res.Gaps)
}

func TestResultCarriesRequestID(t *testing.T) {
	d, _ := newDispatcher()
	req := request(calc.Derivative, map[calc.Field]string{calc.FieldFunction: "x", calc.FieldVariable: "x"})
	res, err := d.Calculate(req)
	require.NoError(t, err)
	assert.Equal(t, req.ID, res.RequestID)
	assert.Equal(t, calc.Derivative, res.Operation)
}
