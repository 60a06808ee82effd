// Package script compiles and evaluates small scripting-language
// expressions used to derive synthetic sensor readings.
package script

import "context"

// Value is the result of evaluating a compiled script.
type Value interface {
	// Value returns the Go representation of the result.
	Value() any

	// String returns the string representation of the result.
	String() string

	// IsTruthy indicates whether the result is considered true.
	IsTruthy() bool

	// Float converts the result to a float64, if possible.
	Float() (float64, error)
}

// Script is a compiled expression ready to be evaluated.
type Script interface {
	// Evaluate runs the script with the given globals.
	Evaluate(ctx context.Context, globals map[string]any) (Value, error)
}

// Compiler compiles expression source into a reusable Script.
type Compiler interface {
	// Compile parses and compiles the given source code.
	Compile(ctx context.Context, code string) (Script, error)
}
