package symbolic

import (
	"math"
	"sort"
)

// ============================================================
// Expansion
// ============================================================

// Expand distributes products over sums and small integer powers of sums.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, ef := range expanded {
				if j != i {
					rest = append(rest, ef)
				}
			}
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(expanded...)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && !n.approx {
			k := n.val.Num().Int64()
			if _, isAdd := base.(*Add); isAdd && k >= 2 && k <= 10 {
				result := Expr(N(1))
				for i := int64(0); i < k; i++ {
					result = expandExpr(MulOf(result, base))
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg))
	}
	return e
}

// ============================================================
// Trig identities
// ============================================================

// TrigSimplify rewrites c*sin(u)**2 + c*cos(u)**2 to c anywhere in e.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(terms...))
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = trigSimplifyExpr(f)
		}
		return MulOf(fs...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		return funcOf(v.name, trigSimplifyExpr(v.arg))
	}
	return e
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		name  string
		arg   string
		coeff *Num
		idx   int
	}
	var found []trigTerm
	for idx, t := range add.terms {
		coeff, inner := extractCoefficient(t)
		p, ok := inner.(*Pow)
		if !ok || !isNumEqual(p.exp, 2) {
			continue
		}
		if fn, ok := p.base.(*Func); ok && (fn.name == "sin" || fn.name == "cos") {
			found = append(found, trigTerm{fn.name, fn.arg.String(), coeff, idx})
		}
	}
	for i := 0; i < len(found); i++ {
		for j := i + 1; j < len(found); j++ {
			ti, tj := found[i], found[j]
			if ti.arg != tj.arg || ti.name == tj.name || ti.coeff.val.Cmp(tj.coeff.val) != 0 {
				continue
			}
			terms := []Expr{ti.coeff}
			for idx, t := range add.terms {
				if idx != ti.idx && idx != tj.idx {
					terms = append(terms, t)
				}
			}
			return trigFindPythagorean(AddOf(terms...))
		}
	}
	return e
}

// DeepSimplify repeats simplification and trig passes until the printed
// form stops changing.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		s := curr.String()
		if s == prev {
			break
		}
		prev = s
		curr = TrigSimplify(curr)
	}
	return curr
}

// Simplify returns the shorter of the deep-simplified form of e and of its
// expansion.
func Simplify(e Expr) Expr {
	plain := DeepSimplify(e)
	expanded := DeepSimplify(Expand(plain))
	if len(expanded.String()) < len(plain.String()) {
		return expanded
	}
	return plain
}

// ============================================================
// Free symbols and structural replacement
// ============================================================

// FreeSymbols returns the sorted names of the symbols in e.
func FreeSymbols(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// DependsOn reports whether the symbol name occurs in e.
func DependsOn(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if DependsOn(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if DependsOn(f, name) {
				return true
			}
		}
	case *Pow:
		return DependsOn(v.base, name) || DependsOn(v.exp, name)
	case *Func:
		return DependsOn(v.arg, name)
	}
	return false
}

// replace swaps every subtree printing like target for with.
func replace(e, target, with Expr) Expr {
	if e.String() == target.String() {
		return with
	}
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = replace(t, target, with)
		}
		return AddOf(terms...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = replace(f, target, with)
		}
		return MulOf(fs...)
	case *Pow:
		return PowOf(replace(v.base, target, with), replace(v.exp, target, with))
	case *Func:
		return funcOf(v.name, replace(v.arg, target, with))
	}
	return e
}

// ============================================================
// Equivalence
// ============================================================

var samplePoints = []float64{0.37, 1.13, 2.71, -0.83, 0.59, -1.91}

// Equivalent reports whether a and b denote the same function. It first
// tries to simplify a-b to zero, then compares the two numerically at a
// handful of points where both are finite.
func Equivalent(a, b Expr) bool {
	if IsZero(Simplify(SubOf(a, b))) {
		return true
	}
	names := FreeSymbols(AddOf(a, b))
	compared := 0
	for k, p := range samplePoints {
		env := make(map[string]float64, len(names))
		for i, n := range names {
			env[n] = p + 0.21*float64(i) + 0.01*float64(k)
		}
		va, okA := a.Eval(env)
		vb, okB := b.Eval(env)
		if !okA || !okB || !finite(va) || !finite(vb) {
			continue
		}
		if math.Abs(va-vb) > 1e-7*math.Max(1, math.Abs(va)) {
			return false
		}
		compared++
	}
	return compared >= 2
}
