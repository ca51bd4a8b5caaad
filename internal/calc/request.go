package calc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"calcdeck/internal/symbolic"
)

// placeholder is the name the outer function of a chain rule uses for its
// argument.
const placeholder = "u"

// Request is one user action. It holds raw text exactly as typed.
type Request struct {
	ID         uuid.UUID
	Operation  Operation
	Function   string
	Variable   string
	Variable2  string
	Lower      string
	Upper      string
	LimitPoint string
	Outer      string
	Inner      string
}

// NewRequest stamps a fresh request ID.
func NewRequest(op Operation) Request {
	return Request{ID: uuid.New(), Operation: op}
}

// Get returns the text of field f.
func (r Request) Get(f Field) string {
	switch f {
	case FieldFunction:
		return r.Function
	case FieldVariable:
		return r.Variable
	case FieldVariable2:
		return r.Variable2
	case FieldLower:
		return r.Lower
	case FieldUpper:
		return r.Upper
	case FieldLimitPoint:
		return r.LimitPoint
	case FieldOuter:
		return r.Outer
	case FieldInner:
		return r.Inner
	}
	return ""
}

// With returns a copy of r with field f set to text.
func (r Request) With(f Field, text string) Request {
	switch f {
	case FieldFunction:
		r.Function = text
	case FieldVariable:
		r.Variable = text
	case FieldVariable2:
		r.Variable2 = text
	case FieldLower:
		r.Lower = text
	case FieldUpper:
		r.Upper = text
	case FieldLimitPoint:
		r.LimitPoint = text
	case FieldOuter:
		r.Outer = text
	case FieldInner:
		r.Inner = text
	}
	return r
}

// Validate checks that every required field is filled in and that variable
// names are usable. It never calls the symbolic engine.
func (r Request) Validate() error {
	var missing []Field
	for _, f := range r.Operation.Required() {
		if strings.TrimSpace(r.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Operation: r.Operation, Fields: missing}
	}

	for _, f := range []Field{FieldVariable, FieldVariable2} {
		if !r.requires(f) {
			continue
		}
		name := strings.TrimSpace(r.Get(f))
		if !symbolic.IsIdentifier(name) {
			return &ParseError{Field: f, Text: name, Err: fmt.Errorf("%q is not a variable name", name)}
		}
		if symbolic.IsReserved(name) {
			return &ParseError{Field: f, Text: name, Err: fmt.Errorf("%q is reserved", name)}
		}
	}
	if r.Operation == ChainRule && strings.TrimSpace(r.Variable) == placeholder {
		return &ParseError{Field: FieldVariable, Text: r.Variable, Err: fmt.Errorf("%q is the outer function placeholder", placeholder)}
	}
	return nil
}

func (r Request) requires(f Field) bool {
	for _, rf := range r.Operation.Required() {
		if rf == f {
			return true
		}
	}
	return false
}
