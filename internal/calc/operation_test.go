package calc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcdeck/internal/symbolic"
)

func TestSubstitutePlaceholder(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"u**2", "(sin(x))**2"},
		{"2*u*cos(u)", "2*(sin(x))*cos((sin(x)))"},
		{"mu + u_0 + u", "mu + u_0 + (sin(x))"},
		{"sqrt(u)", "sqrt((sin(x)))"},
		{"umbrella", "umbrella"},
		{"3", "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, substitutePlaceholder(tt.text, "u", "(sin(x))"), tt.text)
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations {
		got, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
		got, err = ParseOperation(op.Slug())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	tests := map[string]Operation{
		"surface_area": SurfaceArea,
		"CHAIN":        ChainRule,
		" diff ":       Derivative,
		"avg":          Average,
	}
	for in, want := range tests {
		got, err := ParseOperation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperation("fourier")
	assert.Error(t, err)
}

func TestRequiredFields(t *testing.T) {
	for _, op := range Operations {
		fields := op.Required()
		require.NotEmpty(t, fields, op.String())
		assert.Contains(t, fields, FieldVariable)
		if op == ChainRule {
			assert.NotContains(t, fields, FieldFunction)
		} else {
			assert.Equal(t, FieldFunction, fields[0])
		}
	}
}

func TestRequestWithGet(t *testing.T) {
	r := NewRequest(Limit)
	for i, f := range []Field{FieldFunction, FieldVariable, FieldVariable2, FieldLower, FieldUpper, FieldLimitPoint, FieldOuter, FieldInner} {
		r = r.With(f, fmt.Sprint(i))
	}
	assert.Equal(t, "0", r.Function)
	assert.Equal(t, "5", r.LimitPoint)
	assert.Equal(t, "7", r.Get(FieldInner))
	assert.NotEqual(t, NewRequest(Limit).ID, r.ID)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		op   Operation
		err  error
		want string
	}{
		{Area, &MissingFieldError{Operation: Area, Fields: []Field{FieldLower, FieldUpper}}, "Error: Area needs Lower Bound, Upper Bound"},
		{Area, &ParseError{Field: FieldUpper, Text: "2**(", Err: errors.New("bad")}, `Error: invalid upper bound "2**("`},
		{Average, fmt.Errorf("%w: empty", ErrDivisionByZero), "Average: division by zero"},
		{Limit, classify(symbolic.ErrUndefinedLimit), "Limit: undefined"},
		{Area, classify(symbolic.ErrDivergent), "Area: undefined"},
		{Integral, classify(symbolic.ErrNoClosedForm), "Integral: no closed form found"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.op, tt.err))
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "3", display(symbolic.N(3)))
	assert.Equal(t, "1/3 ≈ 0.3333333333", display(symbolic.F(1, 3)))
	assert.Equal(t, "pi/2 ≈ 1.570796327", display(symbolic.DivOf(symbolic.Pi, symbolic.N(2))))
	assert.Equal(t, "2*x", display(symbolic.MustParse("2*x")))
	assert.Equal(t, "oo", display(symbolic.Oo))
}
