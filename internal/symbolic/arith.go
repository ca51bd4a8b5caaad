package symbolic

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	acc := N(0)
	infSign, mixed := 0, false
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	var order []string
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			acc = numAdd(acc, v)
		case *Inf:
			if infSign == 0 {
				infSign = v.sign
			} else if infSign != v.sign {
				mixed = true
			}
		default:
			c, rest := extractCoefficient(t)
			key := rest.String()
			if _, seen := coeffs[key]; !seen {
				order = append(order, key)
				coeffs[key] = N(0)
				rests[key] = rest
			}
			coeffs[key] = numAdd(coeffs[key], c)
		}
	}
	if infSign != 0 && !mixed {
		return &Inf{sign: infSign}
	}

	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	var ks []keyed
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		term := MulOf(c, rests[key])
		if n, ok := term.(*Num); ok {
			acc = numAdd(acc, n)
			continue
		}
		ks = append(ks, keyed{e: term, deg: degree(rests[key]), key: key})
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})

	result := make([]Expr, 0, len(ks)+2)
	for _, k := range ks {
		result = append(result, k.e)
	}
	if mixed {
		result = append(result, Oo, NegOo)
	}
	if !acc.IsZero() || (acc.approx && len(result) == 0) {
		result = append(result, acc)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// degree orders terms the way people write polynomials: highest power first.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return degree(v.base) * n.Float64()
		}
		return 0.5
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	case *Func:
		return 0.5
	}
	return 0
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			sb.WriteString(" - ")
			sb.WriteString(neg.String())
			continue
		}
		sb.WriteString(" + ")
		sb.WriteString(t.String())
	}
	return sb.String()
}

// negated returns -t when t prints with a leading minus sign.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Inf:
		if v.sign < 0 {
			return Oo, true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			fs := append([]Expr{numNeg(c)}, v.factors[1:]...)
			return MulOf(fs...), true
		}
	}
	return nil, false
}

func (a *Add) Sub(name string, value Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, value)
	}
	return AddOf(terms...)
}

func (a *Add) Diff(name string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(name)
	}
	return AddOf(terms...)
}

func (a *Add) Eval(env map[string]float64) (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.Eval(env)
		if !ok {
			return 0, false
		}
		acc += v
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := N(1)
	infSign := 0
	bases := map[string]Expr{}
	exps := map[string][]Expr{}
	var order []string
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Inf:
			if infSign == 0 {
				infSign = 1
			}
			infSign *= v.sign
		default:
			base, exp := Expr(f), Expr(N(1))
			if p, ok := f.(*Pow); ok {
				base, exp = p.base, p.exp
			}
			key := base.String()
			if _, seen := bases[key]; !seen {
				order = append(order, key)
				bases[key] = base
			}
			exps[key] = append(exps[key], exp)
		}
	}
	if infSign != 0 && coeff.IsZero() {
		// 0·∞ stays unevaluated.
		return &Mul{factors: []Expr{coeff, &Inf{sign: infSign}}}
	}
	if coeff.IsZero() {
		return coeff
	}

	var others, spill []Expr
	for _, key := range order {
		exp := exps[key][0]
		if len(exps[key]) > 1 {
			exp = AddOf(exps[key]...)
		}
		switch p := PowOf(bases[key], exp).(type) {
		case *Num:
			coeff = numMul(coeff, p)
		case *Mul:
			spill = append(spill, p)
		default:
			// |u|**2 -> u**2 and friends change the base; merge again.
			bk := p.String()
			if pp, ok := p.(*Pow); ok {
				bk = pp.base.String()
			}
			if bk != key {
				spill = append(spill, p)
			} else {
				others = append(others, p)
			}
		}
	}
	if coeff.IsZero() {
		return coeff
	}
	if len(spill) > 0 {
		fs := append([]Expr{coeff}, others...)
		fs = append(fs, spill...)
		if infSign != 0 {
			fs = append(fs, &Inf{sign: infSign})
		}
		return MulOf(fs...)
	}
	if infSign != 0 {
		sign := infSign
		if coeff.IsNegative() {
			sign = -sign
		}
		if len(others) == 0 {
			return &Inf{sign: sign}
		}
		coeff = N(int64(sign))
		others = append(others, Oo)
	}

	keys := make([]string, len(others))
	for i, e := range others {
		keys[i] = e.String()
	}
	sort.Sort(byKey{exprs: others, keys: keys})

	if len(others) == 0 {
		return coeff
	}
	if coeff.IsOne() && !coeff.approx {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

type byKey struct {
	exprs []Expr
	keys  []string
}

func (b byKey) Len() int           { return len(b.exprs) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.exprs[i], b.exprs[j] = b.exprs[j], b.exprs[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

func (m *Mul) String() string {
	coeff := N(1)
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				den = append(den, powString(v.base, numNeg(e)))
				continue
			}
			num = append(num, factorString(f))
		default:
			num = append(num, factorString(f))
		}
	}

	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	switch {
	case coeff.approx:
		if !coeff.IsOne() || len(num) == 0 {
			num = append([]string{coeff.String()}, num...)
		}
	default:
		if p := coeff.val.Num(); !p.IsInt64() || p.Int64() != 1 || (len(num) == 0 && len(den) == 0) {
			num = append([]string{p.String()}, num...)
		}
		if q := coeff.val.Denom(); !q.IsInt64() || q.Int64() != 1 {
			den = append([]string{q.String()}, den...)
		}
	}

	numStr := strings.Join(num, "*")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return sign + numStr
	}
	denStr := strings.Join(den, "*")
	if len(den) > 1 {
		denStr = "(" + denStr + ")"
	}
	return sign + numStr + "/" + denStr
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (m *Mul) Sub(name string, value Expr) Expr {
	fs := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.Sub(name, value)
	}
	return MulOf(fs...)
}

func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		others := make([]Expr, 0, len(m.factors))
		others = append(others, fi.Diff(name))
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(others...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval(env map[string]float64) (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval(env)
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Pow: base**exp
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expNum := exp.(*Num)
	if expNum && en.IsZero() {
		return N(1)
	}
	if expNum && en.IsOne() && !en.approx {
		return base
	}
	if c, ok := base.(*Const); ok && c == E {
		return ExpOf(exp)
	}

	switch b := base.(type) {
	case *Num:
		if b.IsZero() {
			if expNum && en.IsPositive() {
				return N(0)
			}
			// 0**0 and 0**negative stay unevaluated.
			return &Pow{base: base, exp: exp}
		}
		if b.IsOne() {
			return N(1)
		}
		if expNum {
			if r, ok := numPow(b, en); ok {
				return r
			}
		}
	case *Inf:
		if expNum {
			if en.IsNegative() {
				return N(0)
			}
			if b.sign < 0 && isEven(en) {
				return Oo
			}
			return b
		}
	}

	if expNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, en))
		case *Mul:
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		case *Func:
			// |u|**2k == u**2k for real u.
			if b.name == "Abs" && isEven(en) {
				return PowOf(b.arg, en)
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

func isEven(n *Num) bool { return n.IsInteger() && n.val.Num().Bit(0) == 0 }

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok && e.IsNegative() {
		return "1/" + powString(p.base, numNeg(e))
	}
	return powString(p.base, p.exp)
}

// powString prints base**exp for a non-negative exponent in a form that can
// also sit in a denominator.
func powString(base, exp Expr) string {
	if e, ok := exp.(*Num); ok && !e.approx {
		if e.IsOne() {
			switch base.(type) {
			case *Add, *Mul:
				return "(" + base.String() + ")"
			}
			return base.String()
		}
		if e.val.Cmp(F(1, 2).val) == 0 {
			return "sqrt(" + base.String() + ")"
		}
	}
	bs := base.String()
	switch b := base.(type) {
	case *Add, *Mul, *Pow:
		bs = "(" + bs + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() || b.approx {
			bs = "(" + bs + ")"
		}
	case *Inf:
		bs = "(" + bs + ")"
	}
	es := exp.String()
	switch e := exp.(type) {
	case *Sym, *Const:
	case *Num:
		if e.IsNegative() || !e.IsInteger() || e.approx {
			es = "(" + es + ")"
		}
	default:
		es = "(" + es + ")"
	}
	return bs + "**" + es
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Diff(name string) Expr {
	du := p.base.Diff(name)
	dv := p.exp.Diff(name)
	if !DependsOn(p.exp, name) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !DependsOn(p.base, name) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval(env map[string]float64) (float64, bool) {
	b, ok := p.base.Eval(env)
	if !ok {
		return 0, false
	}
	e, ok := p.exp.Eval(env)
	if !ok {
		return 0, false
	}
	return math.Pow(b, e), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

// extractCoefficient splits a leading numeric factor off e.
func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok := m.factors[0].(*Num); ok {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}
