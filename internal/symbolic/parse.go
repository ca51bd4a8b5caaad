package symbolic

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseError reports malformed input together with the byte offset where
// the parser gave up.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s at position %d", e.Input, e.Msg, e.Pos)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src string
	pos int
	tok token
}

// Parse reads an expression in the usual calculator syntax:
//
//	x**2 + 3*x - 1, sin(x)/x, exp(-x^2), sqrt(1 - x**2), 2*pi, -oo
//
// Both ** and ^ mean exponentiation. Decimal literals are kept exact.
func Parse(input string) (Expr, error) {
	p := &parser{src: input}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.errorf("empty expression")
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.src, Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) next() error {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return nil
	}
	c := p.src[p.pos]
	switch {
	case isDigit(c) || (c == '.' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1])):
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos < len(p.src) && p.src[p.pos] == '.' {
			p.pos++
			for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
				p.pos++
			}
		}
		if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
			j := p.pos + 1
			if j < len(p.src) && (p.src[j] == '+' || p.src[j] == '-') {
				j++
			}
			if j < len(p.src) && isDigit(p.src[j]) {
				for j < len(p.src) && isDigit(p.src[j]) {
					j++
				}
				p.pos = j
			}
		}
		p.tok = token{kind: tokNum, text: p.src[start:p.pos], pos: start}
	case isLetter(c):
		for p.pos < len(p.src) && (isLetter(p.src[p.pos]) || isDigit(p.src[p.pos])) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	case strings.HasPrefix(p.src[p.pos:], "**"):
		p.pos += 2
		p.tok = token{kind: tokOp, text: "**", pos: start}
	case strings.ContainsRune("+-*/^()", rune(c)):
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	default:
		p.tok = token{kind: tokOp, text: string(c), pos: start}
		return p.errorf("unexpected character %q", c)
	}
	return nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func (p *parser) is(op string) bool { return p.tok.kind == tokOp && p.tok.text == op }

// expr := term (('+' | '-') term)*
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.is("+") || p.is("-") {
		op := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = Neg(right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

// term := unary (('*' | '/') unary)*
func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.is("*") || p.is("/") {
		op := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			left = DivOf(left, right)
		} else {
			left = MulOf(left, right)
		}
	}
	return left, nil
}

// unary := ('-' | '+') unary | power
func (p *parser) unary() (Expr, error) {
	if p.is("-") || p.is("+") {
		neg := p.is("-")
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		if neg {
			return Neg(e), nil
		}
		return e, nil
	}
	return p.power()
}

// power := primary (('**' | '^') unary)?
func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.is("**") || p.is("^") {
		if err := p.next(); err != nil {
			return nil, err
		}
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.tok
	switch tok.kind {
	case tokNum:
		if err := p.next(); err != nil {
			return nil, err
		}
		return parseNumber(tok.text, p.src, tok.pos)
	case tokIdent:
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.is("(") {
			fn, ok := builtins[tok.text]
			if !ok {
				return nil, &ParseError{Input: p.src, Pos: tok.pos, Msg: fmt.Sprintf("unknown function %q", tok.text)}
			}
			arg, err := p.group()
			if err != nil {
				return nil, err
			}
			return fn(arg), nil
		}
		switch tok.text {
		case "pi":
			return Pi, nil
		case "E":
			return E, nil
		case "oo":
			return Oo, nil
		}
		if _, ok := builtins[tok.text]; ok {
			return nil, &ParseError{Input: p.src, Pos: tok.pos, Msg: fmt.Sprintf("function %q needs an argument", tok.text)}
		}
		return S(tok.text), nil
	case tokOp:
		if tok.text == "(" {
			return p.group()
		}
		return nil, p.errorf("unexpected %q", tok.text)
	}
	return nil, p.errorf("unexpected end of input")
}

// group := '(' expr ')'
func (p *parser) group() (Expr, error) {
	if !p.is("(") {
		return nil, p.errorf("expected '('")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.is(")") {
		return nil, p.errorf("expected ')'")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return e, nil
}

func parseNumber(text, src string, pos int) (Expr, error) {
	lit := text
	if strings.HasPrefix(lit, ".") {
		lit = "0" + lit
	}
	lit = strings.Replace(lit, ".e", ".0e", 1)
	lit = strings.Replace(lit, ".E", ".0E", 1)
	if strings.HasSuffix(lit, ".") {
		lit += "0"
	}
	r, ok := new(big.Rat).SetString(lit)
	if !ok {
		return nil, &ParseError{Input: src, Pos: pos, Msg: fmt.Sprintf("bad number %q", text)}
	}
	return &Num{val: r}, nil
}

// IsIdentifier reports whether s is usable as a variable name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if isLetter(s[i]) || (i > 0 && isDigit(s[i])) {
			continue
		}
		return false
	}
	return true
}

// IsReserved reports names that cannot be variables: constants and
// function names.
func IsReserved(s string) bool {
	switch s {
	case "pi", "E", "oo":
		return true
	}
	return IsBuiltin(s)
}
