package calc

import (
	"strings"

	"calcdeck/internal/symbolic"
)

// substitutePlaceholder replaces every identifier token equal to name with
// replacement. Longer identifiers that merely contain name, such as u_0 or
// mu, are left alone.
func substitutePlaceholder(text, name, replacement string) string {
	var sb strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		if !isIdentStart(c) {
			sb.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isIdentPart(text[j]) {
			j++
		}
		tok := text[i:j]
		if tok == name {
			sb.WriteString(replacement)
		} else {
			sb.WriteString(tok)
		}
		i = j
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }

// chain holds the pieces of a chain rule evaluation.
type chain struct {
	result   symbolic.Expr
	composed symbolic.Expr
	// composedText is outer with the placeholder replaced by (inner).
	composedText string
}

// chainRule computes d/dx outer(inner(x)) as outer'(inner(x))·inner'(x).
// outer' is taken with respect to the placeholder, printed, and the
// placeholder token replaced by the inner text before parsing it back.
func (d *Dispatcher) chainRule(req Request) (*chain, error) {
	x := strings.TrimSpace(req.Variable)
	inner, err := d.parse(FieldInner, req.Inner)
	if err != nil {
		return nil, err
	}
	outer, err := d.parse(FieldOuter, req.Outer)
	if err != nil {
		return nil, err
	}

	innerD := d.engine.Diff(inner, x)
	outerD := d.engine.Diff(outer, placeholder)
	wrapped := "(" + inner.String() + ")"
	outerAtInner, err := d.parse(FieldOuter, substitutePlaceholder(outerD.String(), placeholder, wrapped))
	if err != nil {
		return nil, err
	}
	result := d.engine.Simplify(symbolic.MulOf(outerAtInner, innerD))

	composedText := substitutePlaceholder(req.Outer, placeholder, "("+strings.TrimSpace(req.Inner)+")")
	composed, err := d.parse(FieldOuter, composedText)
	if err != nil {
		return nil, err
	}
	return &chain{result: result, composed: composed, composedText: composedText}, nil
}
