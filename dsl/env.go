package dsl

// Env is the per-evaluation context supplied by the caller. It is passed by
// reference through every recursive evaluation call and is never mutated by
// the evaluator itself, beyond the one-time registry build.
type Env struct {
	// RegisterFunctions populates the function registry. Callers compose
	// RegisterCoreFunctions with their platform sensor registrations here.
	RegisterFunctions func(Registry)

	// TryGetActuator resolves an actuator name such as "relay_3" to its
	// setter. The setter writes the auto-intent of the named output.
	TryGetActuator func(name string) (Setter, bool)

	// TryReadValue resolves a bare string to a live value (named sensors,
	// status strings). Optional; when nil, bare strings that are neither time
	// literals nor actuators evaluate to an unrecognized-string error.
	TryReadValue func(name string) (Value, bool)

	registry Registry
}

// Functions returns the registry, building it on first use. The registry is
// reused across every evaluation against this Env.
func (e *Env) Functions() Registry {
	if e.registry == nil {
		e.registry = make(Registry)
		if e.RegisterFunctions != nil {
			e.RegisterFunctions(e.registry)
		}
	}
	return e.registry
}
