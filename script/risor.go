package script

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/compiler"
	"github.com/risor-io/risor/modules/all"
	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/parser"
)

// RisorEngine compiles sensor expressions with the Risor scripting
// language. Globals registered at construction time are available to
// every compiled script; the expression names must be known at compile
// time, so any global supplied later during Evaluate must also appear
// here with a placeholder value.
type RisorEngine struct {
	globals map[string]any
}

func NewRisorEngine(globals map[string]any) *RisorEngine {
	return &RisorEngine{globals: globals}
}

func (e *RisorEngine) Compile(ctx context.Context, code string) (Script, error) {
	ast, err := parser.Parse(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sensor expression: %w", err)
	}

	var globalNames []string
	for name := range e.globals {
		globalNames = append(globalNames, name)
	}
	sort.Strings(globalNames)

	compiledCode, err := compiler.Compile(ast, compiler.WithGlobalNames(globalNames))
	if err != nil {
		return nil, fmt.Errorf("failed to compile sensor expression: %w", err)
	}
	return &RisorScript{engine: e, code: compiledCode}, nil
}

// RisorScript is a compiled sensor expression.
type RisorScript struct {
	engine *RisorEngine
	code   *compiler.Code
}

func (s *RisorScript) Evaluate(ctx context.Context, globals map[string]any) (Value, error) {
	combinedGlobals := make(map[string]any)
	for name, value := range s.engine.globals {
		combinedGlobals[name] = value
	}
	for name, value := range globals {
		combinedGlobals[name] = value
	}
	value, err := risor.EvalCode(ctx, s.code, risor.WithGlobals(combinedGlobals))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate sensor expression: %w", err)
	}
	return &RisorValue{obj: value}, nil
}

// RisorValue wraps a Risor object as a script result.
type RisorValue struct {
	obj object.Object
}

func (value *RisorValue) Value() any {
	switch o := value.obj.(type) {
	case *object.String:
		return o.Value()
	case *object.Int:
		return o.Value()
	case *object.Float:
		return o.Value()
	case *object.Bool:
		return o.Value()
	case *object.Time:
		return o.Value()
	case *object.NilType:
		return nil
	default:
		return o.Inspect()
	}
}

// Float converts the result to a float64. Booleans map to 1 and 0 so
// that threshold expressions like `humidity > 60` can be used directly
// as sensor readings.
func (value *RisorValue) Float() (float64, error) {
	switch o := value.obj.(type) {
	case *object.Int:
		return float64(o.Value()), nil
	case *object.Float:
		return o.Value(), nil
	case *object.Bool:
		if o.Value() {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("sensor expression must produce a number, got %s", value.obj.Type())
	}
}

func (value *RisorValue) IsTruthy() bool {
	switch obj := value.obj.(type) {
	case *object.Bool:
		return obj.Value()
	case *object.Int:
		return obj.Value() != 0
	case *object.Float:
		return obj.Value() != 0.0
	case *object.String:
		val := obj.Value()
		return val != "" && strings.ToLower(val) != "false"
	default:
		return obj.IsTruthy()
	}
}

func (value *RisorValue) String() string {
	switch v := value.obj.(type) {
	case *object.String:
		return v.Value()
	case *object.Int:
		return fmt.Sprintf("%d", v.Value())
	case *object.Float:
		return fmt.Sprintf("%g", v.Value())
	case *object.Bool:
		return fmt.Sprintf("%t", v.Value())
	case *object.NilType:
		return ""
	default:
		return v.Inspect()
	}
}

// SensorGlobals returns the standard global set for sensor
// expressions: the Risor builtins plus a placeholder for each
// environment reading that the controller supplies per evaluation.
func SensorGlobals() map[string]any {
	globals := map[string]any{}
	for name, value := range all.Builtins() {
		globals[name] = value
	}
	for _, name := range SensorGlobalNames {
		globals[name] = 0.0
	}
	globals["light_switch"] = false
	return globals
}

// SensorGlobalNames lists the numeric readings exposed to sensor
// expressions. The boolean light_switch reading is exposed separately.
var SensorGlobalNames = []string{
	"temperature",
	"humidity",
	"probe_temperature",
	"light_level",
	"seconds_since_midnight",
}
