package dsl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseRule decodes a JSON rule string into an owned expression tree of
// []any, json.Number, bool and string nodes. Parsing is separated from
// evaluation so the evaluator never depends on a JSON library's view types.
func ParseRule(rule string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(rule)))
	dec.UseNumber()
	var expr any
	if err := dec.Decode(&expr); err != nil {
		return nil, fmt.Errorf("failed to parse rule: %w", err)
	}
	return expr, nil
}

// Evaluate walks an expression tree and produces a Value. Literals resolve
// directly; strings resolve as time literals, then actuator names, then
// readable values; arrays are function calls dispatched through the
// environment's registry.
func Evaluate(expr any, env *Env) Value {
	switch node := expr.(type) {
	case []any:
		return evaluateCall(node, env)

	case string:
		return evaluateString(node, env)

	case bool:
		if node {
			return FloatValue(1)
		}
		return FloatValue(0)

	case json.Number:
		// Integer literals keep their origin kind; everything else is float.
		if i, err := node.Int64(); err == nil {
			return IntValue(i)
		}
		f, err := node.Float64()
		if err != nil {
			return ErrorValue(ErrUnrecognizedType)
		}
		return FloatValue(f)

	// Plain Go numerics appear in hand-built expression trees.
	case float64:
		return FloatValue(node)
	case int:
		return IntValue(int64(node))
	case int64:
		return IntValue(node)

	default:
		return ErrorValue(ErrUnrecognizedType)
	}
}

func evaluateString(s string, env *Env) Value {
	if IsTimeLiteral(s) {
		secs := ParseTimeLiteral(s)
		if secs < 0 {
			return ErrorValue(ErrTime)
		}
		return IntValue(int64(secs))
	}
	if env.TryGetActuator != nil {
		if setter, ok := env.TryGetActuator(s); ok && setter != nil {
			return ActuatorValue(setter)
		}
	}
	if env.TryReadValue != nil {
		if val, ok := env.TryReadValue(s); ok {
			return val
		}
	}
	return ErrorValue(ErrUnrecognizedString)
}

func evaluateCall(call []any, env *Env) Value {
	if len(call) == 0 {
		return ErrorValue(ErrUnrecognizedFunction)
	}
	name, ok := call[0].(string)
	if !ok {
		return ErrorValue(ErrUnrecognizedFunction)
	}
	handler, ok := env.Functions().Lookup(name)
	if !ok {
		return ErrorValue(ErrFunctionNotFound)
	}
	return handler(call, env)
}
