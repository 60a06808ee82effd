package dsl

// Handler implements one DSL function. It receives the full call array with
// the function name at index 0, matching the wire form of the expression.
type Handler func(args []any, env *Env) Value

// Registry maps function names (case-sensitive, unique) to handlers.
// Built-in operators and platform sensor functions share the one namespace.
type Registry map[string]Handler

// Register inserts or overwrites a handler.
func (r Registry) Register(name string, h Handler) {
	r[name] = h
}

// Lookup returns the handler for name.
func (r Registry) Lookup(name string) (Handler, bool) {
	h, ok := r[name]
	return h, ok
}

// RegisterCoreFunctions installs the built-in operator set: comparisons,
// logic, control flow, actions and the no-op.
func RegisterCoreFunctions(r Registry) {
	// Comparison operators
	r.Register("GT", functionGT)
	r.Register("LT", functionLT)
	r.Register("EQ", functionEQ)
	r.Register("NE", functionNE)
	r.Register("GTE", functionGTE)
	r.Register("LTE", functionLTE)

	// Logical operators
	r.Register("AND", functionAND)
	r.Register("OR", functionOR)
	r.Register("NOT", functionNOT)

	// Control flow
	r.Register("IF", functionIF)

	// Actions
	r.Register("SET", functionSET)
	r.Register("NOP", functionNOP)
}

// ZeroArgSensor wraps a sensor reader as a Handler. Sensor calls carry no
// arguments beyond the function name; anything else is rejected.
func ZeroArgSensor(read func() Value) Handler {
	return func(args []any, _ *Env) Value {
		if len(args) != 1 {
			return ErrorValue(ErrUnrecognizedFunction)
		}
		return read()
	}
}

// validateBinaryNumeric evaluates both operands of an ordering comparison,
// propagates errors, enforces numeric kinds, and applies cmp.
func validateBinaryNumeric(args []any, env *Env, cmp func(a, b float64) bool) Value {
	if len(args) != 3 {
		return ErrorValue(ErrComparisonType)
	}
	a := Evaluate(args[1], env)
	b := Evaluate(args[2], env)
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return ErrorValue(ErrComparisonType)
	}
	if cmp(a.AsFloat(), b.AsFloat()) {
		return FloatValue(1)
	}
	return FloatValue(0)
}

func functionGT(args []any, env *Env) Value {
	return validateBinaryNumeric(args, env, func(a, b float64) bool { return a > b })
}

func functionLT(args []any, env *Env) Value {
	return validateBinaryNumeric(args, env, func(a, b float64) bool { return a < b })
}

func functionGTE(args []any, env *Env) Value {
	return validateBinaryNumeric(args, env, func(a, b float64) bool { return a >= b })
}

func functionLTE(args []any, env *Env) Value {
	return validateBinaryNumeric(args, env, func(a, b float64) bool { return a <= b })
}

// functionEQ accepts mixed and string kinds, unlike the ordering comparisons.
// Equality is defined by Value.Equal.
func functionEQ(args []any, env *Env) Value {
	if len(args) != 3 {
		return ErrorValue(ErrComparisonType)
	}
	a := Evaluate(args[1], env)
	b := Evaluate(args[2], env)
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.Equal(b) {
		return FloatValue(1)
	}
	return FloatValue(0)
}

func functionNE(args []any, env *Env) Value {
	if len(args) != 3 {
		return ErrorValue(ErrComparisonType)
	}
	a := Evaluate(args[1], env)
	b := Evaluate(args[2], env)
	if a.IsError() {
		return a
	}
	if b.IsError() {
		return b
	}
	if a.Equal(b) {
		return FloatValue(0)
	}
	return FloatValue(1)
}

// functionAND short-circuits: a false first operand returns 0 without
// evaluating the second, so untaken side effects never run.
func functionAND(args []any, env *Env) Value {
	if len(args) != 3 {
		return ErrorValue(ErrAndOr)
	}
	a := Evaluate(args[1], env)
	if a.IsError() {
		return a
	}
	if !(a.AsFloat() > 0) {
		return FloatValue(0)
	}
	b := Evaluate(args[2], env)
	if b.IsError() {
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return ErrorValue(ErrAndOr)
	}
	if a.AsFloat() > 0 && b.AsFloat() > 0 {
		return FloatValue(1)
	}
	return FloatValue(0)
}

// functionOR short-circuits: a true first operand returns 1 without
// evaluating the second.
func functionOR(args []any, env *Env) Value {
	if len(args) != 3 {
		return ErrorValue(ErrAndOr)
	}
	a := Evaluate(args[1], env)
	if a.IsError() {
		return a
	}
	if a.AsFloat() > 0 {
		return FloatValue(1)
	}
	b := Evaluate(args[2], env)
	if b.IsError() {
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return ErrorValue(ErrAndOr)
	}
	if a.AsFloat() > 0 || b.AsFloat() > 0 {
		return FloatValue(1)
	}
	return FloatValue(0)
}

func functionNOT(args []any, env *Env) Value {
	if len(args) != 2 {
		return ErrorValue(ErrNot)
	}
	a := Evaluate(args[1], env)
	if a.IsError() {
		return a
	}
	if !a.IsNumeric() {
		return ErrorValue(ErrNot)
	}
	if a.AsFloat() > 0 {
		return FloatValue(0)
	}
	return FloatValue(1)
}

// functionIF evaluates only the taken branch. Branches can contain SET calls,
// so evaluating the untaken branch would incorrectly drive hardware.
func functionIF(args []any, env *Env) Value {
	if len(args) != 4 {
		return ErrorValue(ErrIfCondition)
	}
	cond := Evaluate(args[1], env)
	if cond.IsError() {
		return cond
	}
	if !cond.IsNumeric() {
		return ErrorValue(ErrIfCondition)
	}
	if cond.AsFloat() > 0 {
		return Evaluate(args[2], env)
	}
	return Evaluate(args[3], env)
}

// functionSET always evaluates both operands; there is no short-circuit here.
func functionSET(args []any, env *Env) Value {
	if len(args) != 3 {
		return ErrorValue(ErrBoolActuator)
	}
	act := Evaluate(args[1], env)
	val := Evaluate(args[2], env)
	if act.IsError() {
		return act
	}
	if val.IsError() {
		return val
	}
	if act.Kind() != KindActuator || !val.IsNumeric() {
		return ErrorValue(ErrBoolActuator)
	}
	if setter := act.Setter(); setter != nil {
		setter(val.AsFloat())
	}
	return VoidValue()
}

func functionNOP(_ []any, _ *Env) Value {
	return VoidValue()
}
