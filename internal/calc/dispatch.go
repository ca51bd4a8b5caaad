package calc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"calcdeck/internal/plot"
	"calcdeck/internal/symbolic"
)

// Engine is the symbolic backend the dispatcher drives.
type Engine interface {
	Parse(text string) (symbolic.Expr, error)
	Diff(e symbolic.Expr, x string) symbolic.Expr
	Integrate(e symbolic.Expr, x string) (symbolic.Expr, error)
	DefiniteIntegral(e symbolic.Expr, x string, lo, hi symbolic.Expr) (symbolic.Expr, error)
	Limit(e symbolic.Expr, x string, point symbolic.Expr) (symbolic.Expr, error)
	Simplify(e symbolic.Expr) symbolic.Expr
	Lambdify(e symbolic.Expr, vars ...string) (*symbolic.Numeric, error)
}

// Result is a successful calculation.
type Result struct {
	RequestID uuid.UUID
	Operation Operation
	Text      string
	// Value is the headline result; for Centroid it is x̄ and ValueY is ȳ.
	Value  symbolic.Expr
	ValueY symbolic.Expr
	Plot   *plot.Spec
	// Gaps counts plot samples that fell outside the function's domain.
	Gaps int
}

// Dispatcher validates requests, runs them against the engine and builds
// plot data. It holds no per-request state.
type Dispatcher struct {
	engine Engine
	cfg    plot.Config
	log    *slog.Logger
}

func NewDispatcher(engine Engine, cfg plot.Config, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{engine: engine, cfg: cfg, log: log}
}

// Config returns the sampling settings in use.
func (d *Dispatcher) Config() plot.Config { return d.cfg }

// Calculate runs one request. Validation happens before any engine call, so
// a request with missing fields never reaches the engine.
func (d *Dispatcher) Calculate(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := d.log.With("request_id", req.ID.String(), "op", req.Operation.Slug())
	log.Debug("calculate", "function", req.Function, "variable", req.Variable)

	var (
		res *Result
		err error
	)
	switch req.Operation {
	case Integral:
		res, err = d.integral(req)
	case Derivative:
		res, err = d.derivative(req)
	case Limit:
		res, err = d.limit(req)
	case Area:
		res, err = d.area(req)
	case Volume:
		res, err = d.volume(req)
	case Average:
		res, err = d.average(req)
	case SurfaceArea:
		res, err = d.surfaceArea(req)
	case Centroid:
		res, err = d.centroid(req)
	case PartialDerivative:
		res, err = d.partial(req)
	case ChainRule:
		res, err = d.chain(req, log)
	default:
		err = fmt.Errorf("unsupported operation %s", req.Operation)
	}
	if err != nil {
		log.Debug("calculation failed", "err", err)
		return nil, err
	}

	res.RequestID = req.ID
	res.Operation = req.Operation
	res.Gaps = res.Plot.NonFinite()
	if res.Gaps > 0 {
		log.Warn("plot has gaps", "non_finite", res.Gaps)
	}
	log.Debug("calculated", "text", res.Text)
	return res, nil
}

// ──────────────────────────── Inputs ────────────────────────────

func (d *Dispatcher) parse(f Field, text string) (symbolic.Expr, error) {
	e, err := d.engine.Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, &ParseError{Field: f, Text: text, Err: err}
	}
	return e, nil
}

// number parses a field that must be a constant, such as a bound or a
// limit point. Infinite values are allowed only when allowInf is set.
func (d *Dispatcher) number(f Field, text string, allowInf bool) (symbolic.Expr, float64, error) {
	e, err := d.parse(f, text)
	if err != nil {
		return nil, 0, err
	}
	v, ok := symbolic.Value(e)
	switch {
	case !ok:
		return nil, 0, &ParseError{Field: f, Text: text, Err: errors.New("must be a number")}
	case math.IsNaN(v):
		return nil, 0, &ParseError{Field: f, Text: text, Err: errors.New("is not a real number")}
	case math.IsInf(v, 0) && !allowInf:
		return nil, 0, &ParseError{Field: f, Text: text, Err: errors.New("must be finite")}
	}
	return e, v, nil
}

// bounded parses the function and both bounds of a region operation.
func (d *Dispatcher) bounded(req Request) (f, lo, hi symbolic.Expr, a, b float64, err error) {
	if f, err = d.parse(FieldFunction, req.Function); err != nil {
		return
	}
	if lo, a, err = d.number(FieldLower, req.Lower, false); err != nil {
		return
	}
	hi, b, err = d.number(FieldUpper, req.Upper, false)
	return
}

func (d *Dispatcher) definite(e symbolic.Expr, x string, lo, hi symbolic.Expr) (symbolic.Expr, error) {
	v, err := d.engine.DefiniteIntegral(e, x, lo, hi)
	return v, classify(err)
}

// ──────────────────────────── Operations ────────────────────────────

func (d *Dispatcher) integral(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, err := d.parse(FieldFunction, req.Function)
	if err != nil {
		return nil, err
	}
	anti, err := d.engine.Integrate(f, x)
	if err != nil {
		return nil, classify(err)
	}
	return &Result{
		Text:  "Integral: " + display(anti),
		Value: anti,
		Plot:  d.dualCurve(f, anti, x, "Integral"),
	}, nil
}

func (d *Dispatcher) derivative(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, err := d.parse(FieldFunction, req.Function)
	if err != nil {
		return nil, err
	}
	df := d.engine.Diff(f, x)
	return &Result{
		Text:  "Derivative: " + display(df),
		Value: df,
		Plot:  d.dualCurve(f, df, x, "Derivative"),
	}, nil
}

func (d *Dispatcher) limit(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, err := d.parse(FieldFunction, req.Function)
	if err != nil {
		return nil, err
	}
	point, p, err := d.number(FieldLimitPoint, req.LimitPoint, true)
	if err != nil {
		return nil, err
	}
	l, err := d.engine.Limit(f, x, point)
	if err != nil {
		return nil, classify(err)
	}
	return &Result{
		Text:  "Limit: " + display(l),
		Value: l,
		Plot:  d.limitPlot(f, x, point, p, l),
	}, nil
}

func (d *Dispatcher) area(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, lo, hi, a, b, err := d.bounded(req)
	if err != nil {
		return nil, err
	}
	v, err := d.definite(f, x, lo, hi)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:  "Area: " + display(v),
		Value: v,
		Plot:  d.areaPlot(f, x, a, b, lo, hi),
	}, nil
}

func (d *Dispatcher) volume(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, lo, hi, a, b, err := d.bounded(req)
	if err != nil {
		return nil, err
	}
	sq, err := d.definite(symbolic.PowOf(f, symbolic.N(2)), x, lo, hi)
	if err != nil {
		return nil, err
	}
	v := d.engine.Simplify(symbolic.MulOf(symbolic.Pi, sq))
	return &Result{
		Text:  "Volume: " + display(v),
		Value: v,
		Plot:  d.revolutionPlot(f, x, a, b, fmt.Sprintf("Volume of revolution from %s to %s", lo, hi)),
	}, nil
}

func (d *Dispatcher) average(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, lo, hi, a, b, err := d.bounded(req)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, fmt.Errorf("%w: average over [%s, %s]", ErrDivisionByZero, lo, hi)
	}
	total, err := d.definite(f, x, lo, hi)
	if err != nil {
		return nil, err
	}
	avg := d.engine.Simplify(symbolic.DivOf(total, symbolic.SubOf(hi, lo)))
	return &Result{
		Text:  "Average: " + display(avg),
		Value: avg,
		Plot:  d.averagePlot(f, x, a, b, lo, hi, avg),
	}, nil
}

func (d *Dispatcher) surfaceArea(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, lo, hi, a, b, err := d.bounded(req)
	if err != nil {
		return nil, err
	}
	total, err := d.definite(f, x, lo, hi)
	if err != nil {
		return nil, err
	}
	s := d.engine.Simplify(symbolic.MulOf(symbolic.N(2), symbolic.Pi, total))
	return &Result{
		Text:  "Area of Revolution: " + display(s),
		Value: s,
		Plot:  d.revolutionPlot(f, x, a, b, fmt.Sprintf("Surface of revolution from %s to %s", lo, hi)),
	}, nil
}

func (d *Dispatcher) centroid(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	f, lo, hi, a, b, err := d.bounded(req)
	if err != nil {
		return nil, err
	}
	mass, err := d.definite(f, x, lo, hi)
	if err != nil {
		return nil, err
	}
	if d.negligible(mass, f, x, a, b) {
		return nil, fmt.Errorf("%w: region between %s and %s has zero area", ErrDivisionByZero, lo, hi)
	}
	moment, err := d.definite(symbolic.MulOf(symbolic.S(x), f), x, lo, hi)
	if err != nil {
		return nil, err
	}
	sq, err := d.definite(symbolic.PowOf(f, symbolic.N(2)), x, lo, hi)
	if err != nil {
		return nil, err
	}
	xbar := d.engine.Simplify(symbolic.DivOf(moment, mass))
	ybar := d.engine.Simplify(symbolic.DivOf(sq, symbolic.MulOf(symbolic.N(2), mass)))
	return &Result{
		Text:   fmt.Sprintf("Centroid: (x̄ = %s, ȳ = %s)", display(xbar), display(ybar)),
		Value:  xbar,
		ValueY: ybar,
		Plot:   d.centroidPlot(f, x, a, b, lo, hi, xbar, ybar),
	}, nil
}

// zeroMassTol bounds a quadrature mass, relative to (b-a)*max|f|, below
// which the region counts as having no area.
const zeroMassTol = 1e-12

// negligible reports whether mass is zero, or is a quadrature result small
// enough to be rounding residue of a region whose signed area cancels.
func (d *Dispatcher) negligible(mass, f symbolic.Expr, x string, a, b float64) bool {
	if symbolic.IsZero(mass) {
		return true
	}
	m, ok := symbolic.Value(mass)
	if !ok {
		return false
	}
	if m == 0 {
		return true
	}
	_, ys, ok := d.curve(f, x, a, b)
	if !ok {
		return false
	}
	peak := 0.0
	for _, y := range ys {
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			peak = math.Max(peak, math.Abs(y))
		}
	}
	return math.Abs(m) <= zeroMassTol*math.Abs(b-a)*peak
}

func (d *Dispatcher) partial(req Request) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	y := strings.TrimSpace(req.Variable2)
	f, err := d.parse(FieldFunction, req.Function)
	if err != nil {
		return nil, err
	}
	df := d.engine.Diff(f, y)
	return &Result{
		Text:  fmt.Sprintf("Partial Derivative with respect to %s: %s", y, display(df)),
		Value: df,
		Plot:  d.partialPlot(f, df, x, y),
	}, nil
}

func (d *Dispatcher) chain(req Request, log *slog.Logger) (*Result, error) {
	x := strings.TrimSpace(req.Variable)
	c, err := d.chainRule(req)
	if err != nil {
		return nil, err
	}
	if want := d.engine.Diff(c.composed, x); !symbolic.Equivalent(want, c.result) {
		log.Warn("chain rule disagrees with direct derivative", "chain", c.result.String(), "direct", want.String())
	}
	return &Result{
		Text:  "Chain Rule Result: " + display(c.result),
		Value: c.result,
		Plot:  d.chainPlot(c, x),
	}, nil
}

// display prints e, adding a decimal approximation for exact non-integer
// constants such as pi/2 or 1/3.
func display(e symbolic.Expr) string {
	s := e.String()
	if n, ok := e.(*symbolic.Num); ok && (n.IsInteger() || n.IsApprox()) {
		return s
	}
	if len(symbolic.FreeSymbols(e)) > 0 {
		return s
	}
	v, ok := symbolic.Value(e)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}
	return s + " ≈ " + strconv.FormatFloat(v, 'g', 10, 64)
}
