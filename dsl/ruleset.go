package dsl

import (
	"fmt"
	"io"
	"log/slog"
)

// RuleResult reports the outcome of one rule slot in a rule-set pass. A JSON
// parse failure is a distinct outer failure, not an Error-kind Value: there
// is no expression tree to evaluate.
type RuleResult struct {
	Relay    int
	Value    Value
	ParseErr error
}

// ProcessRuleSet evaluates one rule per relay slot, in index order, applying
// the automatic relay-control convention:
//
//  1. The slot's relay is first reset to 2 ("don't care") so a rule that
//     produces no numeric result and performs no SET leaves no stale state.
//  2. A rule that fails to parse is logged and skipped; the relay stays at
//     don't-care until the stored rule string is corrected.
//  3. A numeric result drives the same-indexed relay automatically, so a bare
//     comparison like ["GT", ["getTemperature"], 25] needs no IF/SET
//     boilerplate.
//  4. A void result means the rule performed its own explicit SET calls.
//  5. An error result is logged; relay state is left as already written.
//
// A bad rule never stops evaluation of the remaining slots. The returned
// results carry each slot's final Value (or parse error) for observability.
func ProcessRuleSet(rules []string, env *Env, logger *slog.Logger) []RuleResult {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	results := make([]RuleResult, 0, len(rules))
	for i, rule := range rules {
		name := relayName(i)

		if env.TryGetActuator != nil {
			if setter, ok := env.TryGetActuator(name); ok && setter != nil {
				setter(2.0)
			}
		}

		expr, err := ParseRule(rule)
		if err != nil {
			logger.Warn("skipping unparseable rule",
				"relay", i, "rule", rule, "error", err)
			results = append(results, RuleResult{Relay: i, ParseErr: err})
			continue
		}

		result := Evaluate(expr, env)
		results = append(results, RuleResult{Relay: i, Value: result})

		switch {
		case result.IsNumeric():
			if env.TryGetActuator != nil {
				if setter, ok := env.TryGetActuator(name); ok && setter != nil {
					setter(result.AsFloat())
				}
			}
			logger.Debug("automatic relay control",
				"relay", i, "value", result.AsFloat())

		case result.Kind() == KindVoid:
			// Explicit rule: any SET calls already ran inside evaluation.

		default:
			logger.Warn("rule evaluation failed",
				"relay", i,
				"kind", result.Kind().String(),
				"code", result.ErrorCode().String())
		}
	}
	return results
}

func relayName(i int) string {
	return fmt.Sprintf("relay_%d", i)
}
