// Package dsl implements the automation rule engine: a small LISP-like JSON
// expression language that evaluates sensor conditions and drives actuator
// state. Rules are JSON arrays whose first element is a function name, e.g.
//
//	["IF", ["GT", ["getTemperature"], 25], ["SET", "relay_0", 1], ["SET", "relay_0", 0]]
//
// Evaluation is synchronous and recursive; every intermediate result is a
// Value, including errors, which propagate in-band rather than aborting the
// rule set.
package dsl

import "strconv"

// Kind identifies which variant of a Value is active.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindVoid
	KindActuator
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindActuator:
		return "actuator"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Setter drives a single actuator output.
type Setter func(float64)

// Value is the universal result type of rule evaluation. Exactly one variant
// is active at a time. Error values never participate in further arithmetic
// or logic; operators propagate them unchanged.
type Value struct {
	kind   Kind
	f      float64
	i      int64
	s      string
	setter Setter
	code   ErrorCode
}

// FloatValue returns a numeric Value of float origin.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// IntValue returns a numeric Value of integer origin. Int is kept distinct
// from Float for literal-origin fidelity but the two are numerically
// interchangeable in comparisons.
func IntValue(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// StringValue returns a string Value.
func StringValue(v string) Value {
	return Value{kind: KindString, s: v}
}

// VoidValue returns the result of a successful side-effecting operation with
// no return value (SET, NOP).
func VoidValue() Value {
	return Value{kind: KindVoid}
}

// ActuatorValue returns a resolved handle to a settable output. It is only
// valid as the first argument of SET.
func ActuatorValue(setter Setter) Value {
	return Value{kind: KindActuator, setter: setter}
}

// ErrorValue returns a tagged failure.
func ErrorValue(code ErrorCode) Value {
	return Value{kind: KindError, code: code}
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether the value is Float- or Int-kind.
func (v Value) IsNumeric() bool {
	return v.kind == KindFloat || v.kind == KindInt
}

// IsError reports whether the value is a tagged failure.
func (v Value) IsError() bool { return v.kind == KindError }

// ErrorCode returns the failure code, or ErrNone for non-error values.
func (v Value) ErrorCode() ErrorCode {
	if v.kind != KindError {
		return ErrNone
	}
	return v.code
}

// Setter returns the actuator setter, or nil for non-actuator values.
func (v Value) Setter() Setter {
	if v.kind != KindActuator {
		return nil
	}
	return v.setter
}

// AsFloat converts the value to a float64. Int converts exactly; String uses
// a strict parse where the entire string must be consumed or the result is 0;
// Void, Actuator and Error convert to 0.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindString:
		return parseStringAsFloat(v.s)
	default:
		return 0
	}
}

// AsInt converts the value to an int64. Float truncates toward zero; String
// is parsed in two stages: a pure-integer parse first, then a float parse
// followed by truncation, so "25.7" converts to 25 just as Float(25.7) does.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindString:
		return parseStringAsInt(v.s)
	default:
		return 0
	}
}

// AsString renders the value for status reporting and logs.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', 3, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindVoid:
		return "void"
	case KindActuator:
		return "actuator"
	case KindError:
		return v.code.String()
	default:
		return ""
	}
}

// Equal implements the DSL equality relation: errors are never equal to
// anything, two strings compare as text, and any other pair compares
// numerically after coercion.
func (v Value) Equal(other Value) bool {
	if v.kind == KindError || other.kind == KindError {
		return false
	}
	if v.kind == KindString && other.kind == KindString {
		return v.s == other.s
	}
	return v.AsFloat() == other.AsFloat()
}

// parseStringAsFloat parses the whole string as a float, returning 0 when
// the parse fails or leaves unconsumed input.
func parseStringAsFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseStringAsInt(s string) int64 {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
