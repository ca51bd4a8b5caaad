package calc

import (
	"errors"
	"fmt"
	"strings"

	"calcdeck/internal/symbolic"
)

var (
	ErrParse          = errors.New("parse error")
	ErrMissingField   = errors.New("missing required field")
	ErrDivisionByZero = errors.New("division by zero")
	// ErrUndefined covers limits that do not exist and divergent integrals.
	ErrUndefined    = errors.New("undefined")
	ErrNoClosedForm = errors.New("no closed form")
)

// MissingFieldError lists every required input left blank.
type MissingFieldError struct {
	Operation Operation
	Fields    []Field
}

func (e *MissingFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return fmt.Sprintf("%s needs %s", e.Operation, strings.Join(names, ", "))
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// ParseError is an input the symbolic engine could not read.
type ParseError struct {
	Field Field
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: cannot parse %q", e.Field, e.Text)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Unwrap() error        { return e.Err }

// classify maps engine failures onto the calculator's error taxonomy,
// keeping the original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, symbolic.ErrUndefinedLimit), errors.Is(err, symbolic.ErrDivergent):
		return fmt.Errorf("%w: %w", ErrUndefined, err)
	case errors.Is(err, symbolic.ErrNoClosedForm):
		return fmt.Errorf("%w: %w", ErrNoClosedForm, err)
	}
	return err
}

// Message is the one-line text the user sees for a failed calculation.
func Message(op Operation, err error) string {
	var missing *MissingFieldError
	var perr *ParseError
	switch {
	case errors.As(err, &missing):
		return "Error: " + missing.Error()
	case errors.As(err, &perr):
		return "Error: invalid " + strings.ToLower(perr.Field.String()) + " " + quote(perr.Text)
	case errors.Is(err, ErrDivisionByZero):
		return op.String() + ": division by zero"
	case errors.Is(err, ErrUndefined):
		return op.String() + ": undefined"
	case errors.Is(err, ErrNoClosedForm):
		return op.String() + ": no closed form found"
	}
	return fmt.Sprintf("%s: %v", op, err)
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	return fmt.Sprintf("%q", s)
}
