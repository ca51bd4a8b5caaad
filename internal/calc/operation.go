// Package calc routes a calculation request to the symbolic engine, builds
// the display text and assembles the plot data for the result.
package calc

import (
	"fmt"
	"strings"
)

// Operation is one of the ten calculations the workbench offers.
type Operation int

const (
	Integral Operation = iota
	Derivative
	Limit
	Area
	Volume
	Average
	SurfaceArea
	Centroid
	PartialDerivative
	ChainRule
)

// Operations lists every operation in menu order.
var Operations = []Operation{
	Integral, Derivative, Limit, Area, Volume, Average, SurfaceArea, Centroid, PartialDerivative, ChainRule,
}

func (o Operation) String() string {
	switch o {
	case Integral:
		return "Integral"
	case Derivative:
		return "Derivative"
	case Limit:
		return "Limit"
	case Area:
		return "Area"
	case Volume:
		return "Volume"
	case Average:
		return "Average"
	case SurfaceArea:
		return "Surface Area"
	case Centroid:
		return "Centroid"
	case PartialDerivative:
		return "Partial Derivative"
	case ChainRule:
		return "Chain Rule"
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// Slug is the lowercase, dash-separated name used on the command line.
func (o Operation) Slug() string {
	return strings.ReplaceAll(strings.ToLower(o.String()), " ", "-")
}

var operationAliases = map[string]Operation{
	"integrate":  Integral,
	"diff":       Derivative,
	"derive":     Derivative,
	"lim":        Limit,
	"surface":    SurfaceArea,
	"revolution": SurfaceArea,
	"center":     Centroid,
	"centre":     Centroid,
	"partial":    PartialDerivative,
	"chain":      ChainRule,
	"mean":       Average,
	"avg":        Average,
}

// ParseOperation accepts display names, slugs and a few short aliases,
// ignoring case.
func ParseOperation(s string) (Operation, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	for _, op := range Operations {
		if op.Slug() == key {
			return op, nil
		}
	}
	if op, ok := operationAliases[key]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Field names one input of a request.
type Field int

const (
	FieldFunction Field = iota
	FieldVariable
	FieldVariable2
	FieldLower
	FieldUpper
	FieldLimitPoint
	FieldOuter
	FieldInner
)

func (f Field) String() string {
	switch f {
	case FieldFunction:
		return "Function"
	case FieldVariable:
		return "Variable"
	case FieldVariable2:
		return "Variable 2"
	case FieldLower:
		return "Lower Bound"
	case FieldUpper:
		return "Upper Bound"
	case FieldLimitPoint:
		return "Limit Point"
	case FieldOuter:
		return "Outer Function"
	case FieldInner:
		return "Inner Function"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// Required returns the inputs the operation needs, in form order. The TUI
// shows exactly these fields.
func (o Operation) Required() []Field {
	switch o {
	case Integral, Derivative:
		return []Field{FieldFunction, FieldVariable}
	case Limit:
		return []Field{FieldFunction, FieldVariable, FieldLimitPoint}
	case Area, Volume, Average, SurfaceArea, Centroid:
		return []Field{FieldFunction, FieldVariable, FieldLower, FieldUpper}
	case PartialDerivative:
		return []Field{FieldFunction, FieldVariable, FieldVariable2}
	case ChainRule:
		return []Field{FieldVariable, FieldOuter, FieldInner}
	}
	return nil
}
