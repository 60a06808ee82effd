package dsl

// ErrorCode classifies rule evaluation failures. Codes travel in-band inside
// an Error-kind Value: the first error encountered during evaluation wins and
// is propagated unchanged by every enclosing operator.
type ErrorCode uint8

const (
	ErrNone ErrorCode = iota

	// ErrUnrecognizedType reports a JSON value of a type the engine does not
	// evaluate (null, object).
	ErrUnrecognizedType

	// ErrUnrecognizedFunction reports a call whose head element is missing or
	// not a string, or a sensor function invoked with arguments.
	ErrUnrecognizedFunction

	// ErrFunctionNotFound reports a registry miss for a named function.
	ErrFunctionNotFound

	// ErrUnrecognizedString reports a bare string that is not a time literal,
	// actuator name, or readable value.
	ErrUnrecognizedString

	// ErrIfCondition reports a non-numeric IF condition or bad IF arity.
	ErrIfCondition

	// ErrBoolActuator reports a SET whose target is not an actuator or whose
	// value is not numeric.
	ErrBoolActuator

	// ErrAndOr reports a non-numeric AND/OR operand.
	ErrAndOr

	// ErrNot reports a non-numeric NOT operand.
	ErrNot

	// ErrComparisonType reports an ordering comparison over non-numeric
	// operands, or bad comparison arity.
	ErrComparisonType

	// ErrTime reports a malformed @HH:MM:SS time literal.
	ErrTime

	// ErrUnrecognizedActuator reports an actuator name that failed to resolve.
	ErrUnrecognizedActuator

	// ErrSensorRead reports a sensor- or computed-value read failure.
	ErrSensorRead

	// ErrActuatorSet is reserved for hardware-level actuator write failures.
	ErrActuatorSet
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "no_error"
	case ErrUnrecognizedType:
		return "unrecognized_type_error"
	case ErrUnrecognizedFunction:
		return "unrecognized_function_error"
	case ErrFunctionNotFound:
		return "function_not_found_error"
	case ErrUnrecognizedString:
		return "unrecognized_string_error"
	case ErrIfCondition:
		return "if_condition_error"
	case ErrBoolActuator:
		return "bool_actuator_error"
	case ErrAndOr:
		return "and_or_error"
	case ErrNot:
		return "not_error"
	case ErrComparisonType:
		return "comparison_type_error"
	case ErrTime:
		return "time_error"
	case ErrUnrecognizedActuator:
		return "unrecognized_actuator_error"
	case ErrSensorRead:
		return "sensor_read_error"
	case ErrActuatorSet:
		return "actuator_set_error"
	default:
		return "unknown_error"
	}
}
