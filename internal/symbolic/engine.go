package symbolic

// Engine bundles the operations the calculator needs behind one value so
// callers can swap in a wrapper for tests.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

func (*Engine) Parse(text string) (Expr, error) { return Parse(text) }

// Diff returns the simplified derivative of e with respect to x.
func (*Engine) Diff(e Expr, x string) Expr { return Derivative(e, x) }

func (*Engine) Integrate(e Expr, x string) (Expr, error) { return Integrate(e, x) }

func (*Engine) DefiniteIntegral(e Expr, x string, lo, hi Expr) (Expr, error) {
	return DefiniteIntegral(e, x, lo, hi)
}

func (*Engine) Limit(e Expr, x string, point Expr) (Expr, error) { return Limit(e, x, point) }

func (*Engine) LimitDir(e Expr, x string, point Expr, dir Direction) (Expr, error) {
	return LimitDir(e, x, point, dir)
}

// Sub substitutes value for x and simplifies.
func (*Engine) Sub(e Expr, x string, value Expr) Expr { return Simplify(e.Sub(x, value)) }

func (*Engine) Simplify(e Expr) Expr { return Simplify(e) }

func (*Engine) Lambdify(e Expr, vars ...string) (*Numeric, error) { return Lambdify(e, vars...) }
