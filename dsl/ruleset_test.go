package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRuleSetDontCareReset(t *testing.T) {
	rig := newTestRig()
	ProcessRuleSet([]string{`["NOP"]`}, rig.env, nil)

	// NOP returns void and performs no SET, so the relay keeps the
	// don't-care value written before the rule ran.
	assert.Equal(t, 2.0, rig.relays[0])
}

func TestProcessRuleSetAutomaticControl(t *testing.T) {
	t.Run("true comparison drives relay on", func(t *testing.T) {
		rig := newTestRig()
		rig.temperature = 27.5
		ProcessRuleSet([]string{`["GT", ["getTemperature"], 25]`}, rig.env, nil)
		assert.Equal(t, 1.0, rig.relays[0])
	})

	t.Run("false comparison drives relay off", func(t *testing.T) {
		rig := newTestRig()
		rig.temperature = 20
		ProcessRuleSet([]string{`["GT", ["getTemperature"], 25]`}, rig.env, nil)
		assert.Equal(t, 0.0, rig.relays[0])
	})

	t.Run("rules drive their own slot index", func(t *testing.T) {
		rig := newTestRig()
		ProcessRuleSet([]string{`["NOP"]`, `["GT", 2, 1]`}, rig.env, nil)
		assert.Equal(t, 2.0, rig.relays[0])
		assert.Equal(t, 1.0, rig.relays[1])
	})
}

func TestProcessRuleSetExplicitConvention(t *testing.T) {
	rig := newTestRig()
	ProcessRuleSet([]string{
		`["IF", ["GT", ["getTemperature"], 25], ["SET", "relay_3", 1], ["SET", "relay_3", 0]]`,
	}, rig.env, nil)

	// Void result: no automatic write to relay_0 beyond the reset.
	assert.Equal(t, 2.0, rig.relays[0])
	assert.Equal(t, 1.0, rig.relays[3])
}

func TestProcessRuleSetParseFailure(t *testing.T) {
	rig := newTestRig()
	ProcessRuleSet([]string{`["GT", 1`}, rig.env, nil)

	// Unparseable rule is skipped; relay stays at don't-care.
	assert.Equal(t, 2.0, rig.relays[0])
	require.Equal(t, 1, rig.setterCalls[0])
}

func TestProcessRuleSetErrorIsolation(t *testing.T) {
	rig := newTestRig()
	rig.temperature = 27.5
	ProcessRuleSet([]string{
		`["UNKNOWN"]`,
		`["GT", ["getTemperature"], 25]`,
	}, rig.env, nil)

	// relay_0's rule errored and left don't-care; relay_1 still evaluated.
	assert.Equal(t, 2.0, rig.relays[0])
	assert.Equal(t, 1.0, rig.relays[1])
}

func TestProcessRuleSetResults(t *testing.T) {
	rig := newTestRig()
	results := ProcessRuleSet([]string{
		`["GT", 2, 1]`,
		`["NOP"]`,
		`["UNKNOWN"]`,
		`["GT", 1`,
	}, rig.env, nil)

	require.Len(t, results, 4)
	assert.True(t, results[0].Value.IsNumeric())
	assert.Equal(t, KindVoid, results[1].Value.Kind())
	assert.Equal(t, ErrFunctionNotFound, results[2].Value.ErrorCode())
	assert.Error(t, results[3].ParseErr)
	assert.Equal(t, 3, results[3].Relay)
}

func TestProcessRuleSetLaterRulesSeeEarlierWrites(t *testing.T) {
	rig := newTestRig()
	ProcessRuleSet([]string{
		`["SET", "relay_1", 1]`,
		`["NOP"]`,
	}, rig.env, nil)

	// Rule 0 explicitly set relay_1; rule 1's don't-care reset then
	// overwrote it, since the actuator map is shared in-place state.
	assert.Equal(t, 2.0, rig.relays[1])
}
