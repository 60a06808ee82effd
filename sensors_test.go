package growbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecondsSinceMidnight(t *testing.T) {
	noon := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 43200, SecondsSinceMidnight(noon))

	late := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, 86399, SecondsSinceMidnight(late))

	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, SecondsSinceMidnight(midnight))
}

func TestCToF(t *testing.T) {
	assert.InDelta(t, 32.0, CToF(0), 0.001)
	assert.InDelta(t, 212.0, CToF(100), 0.001)
	assert.InDelta(t, 77.0, CToF(25), 0.001)
}

func TestSnapshotStore(t *testing.T) {
	store := NewSnapshotStore()

	store.Update(func(snap *SensorSnapshot) {
		snap.Temperature = 24.5
		snap.Humidity = 61
		snap.LightSwitch = true
	})

	snap := store.Snapshot()
	assert.Equal(t, 24.5, snap.Temperature)
	assert.Equal(t, 61.0, snap.Humidity)
	assert.True(t, snap.LightSwitch)
	assert.False(t, snap.CapturedAt.IsZero(), "snapshot should be timestamped on read")
	assert.Equal(t, SecondsSinceMidnight(snap.CapturedAt), snap.SecondsSinceMidnight)
}

func TestSnapshotFunc(t *testing.T) {
	source := SnapshotFunc(func() SensorSnapshot {
		return SensorSnapshot{Temperature: 19}
	})
	assert.Equal(t, 19.0, source.Snapshot().Temperature)
}
