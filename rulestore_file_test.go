package growbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRuleStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileRuleStore(t.TempDir())
	require.NoError(t, err)

	rules := []string{`["SET","relay_0",1]`, `["NOP"]`}
	require.NoError(t, store.SaveRules(ctx, rules))

	loaded, err := store.LoadRules(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)
}

func TestFileRuleStoreEmptyDir(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileRuleStore(t.TempDir())
	require.NoError(t, err)

	rules, err := store.LoadRules(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultRule, DefaultRule, DefaultRule}, rules)

	labels, err := store.LoadLabels(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, labels, 2)
}

func TestFileRuleStorePadsShortSets(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileRuleStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveRules(ctx, []string{`["NOP"]`}))
	rules, err := store.LoadRules(ctx, 4)
	require.NoError(t, err)
	require.Len(t, rules, 4)
	assert.Equal(t, DefaultRule, rules[3])
}

func TestFileRuleStoreLabels(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileRuleStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveLabels(ctx, []string{"heater", "fan"}))

	// A second store over the same directory sees the persisted labels.
	reopened, err := NewFileRuleStore(dir)
	require.NoError(t, err)
	labels, err := reopened.LoadLabels(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"heater", "fan"}, labels)
}

func TestNullRuleStore(t *testing.T) {
	ctx := context.Background()
	store := NewNullRuleStore()

	require.NoError(t, store.SaveRules(ctx, []string{`["NOP"]`}))
	rules, err := store.LoadRules(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultRule, DefaultRule}, rules)
}
