package growbox

import "context"

// DefaultRule is the rule string for an unconfigured relay slot.
const DefaultRule = `["NOP"]`

// RuleStore persists per-relay rule strings and labels so a node can
// restart without losing its configuration.
type RuleStore interface {
	SaveRules(ctx context.Context, rules []string) error
	LoadRules(ctx context.Context, count int) ([]string, error)
	SaveLabels(ctx context.Context, labels []string) error
	LoadLabels(ctx context.Context, count int) ([]string, error)
}

// NullRuleStore discards writes and returns defaults. Useful for tests and
// ephemeral nodes.
type NullRuleStore struct{}

func NewNullRuleStore() *NullRuleStore { return &NullRuleStore{} }

func (*NullRuleStore) SaveRules(context.Context, []string) error { return nil }

func (*NullRuleStore) LoadRules(_ context.Context, count int) ([]string, error) {
	return padRules(nil, count), nil
}

func (*NullRuleStore) SaveLabels(context.Context, []string) error { return nil }

func (*NullRuleStore) LoadLabels(_ context.Context, count int) ([]string, error) {
	return make([]string, count), nil
}

// padRules sizes a loaded rule list to the configured relay count, filling
// missing slots with the default rule.
func padRules(rules []string, count int) []string {
	out := make([]string, count)
	for i := range out {
		if i < len(rules) && rules[i] != "" {
			out[i] = rules[i]
		} else {
			out[i] = DefaultRule
		}
	}
	return out
}

func padLabels(labels []string, count int) []string {
	out := make([]string, count)
	copy(out, labels)
	return out
}
