package growbox

import (
	"sync"
	"time"
)

// SensorSnapshot holds one control-loop tick's worth of sensor readings.
// The rule engine only ever sees snapshots, never live hardware reads, which
// keeps evaluation side-effect-bounded and fast.
type SensorSnapshot struct {
	Temperature          float64   `json:"temperature"`
	Humidity             float64   `json:"humidity"`
	ProbeTemperature     float64   `json:"probe_temperature"`
	LightLevel           float64   `json:"light_level"`
	LightSwitch          bool      `json:"light_switch"`
	SecondsSinceMidnight int       `json:"seconds_since_midnight"`
	CapturedAt           time.Time `json:"captured_at"`
}

// SnapshotSource supplies the current snapshot at the start of each tick.
// Implementations wrap sensor polling loops, simulators or remote probes.
type SnapshotSource interface {
	Snapshot() SensorSnapshot
}

// SnapshotFunc adapts a function to the SnapshotSource interface.
type SnapshotFunc func() SensorSnapshot

func (f SnapshotFunc) Snapshot() SensorSnapshot { return f() }

// SnapshotStore is a mutex-guarded SnapshotSource fed incrementally by
// ingestion paths such as the MQTT probe listener. Snapshot stamps the wall
// clock so rules always see fresh time-of-day.
type SnapshotStore struct {
	mu   sync.Mutex
	snap SensorSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Snapshot returns the current readings with time fields refreshed.
func (s *SnapshotStore) Snapshot() SensorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	now := time.Now()
	snap.CapturedAt = now
	snap.SecondsSinceMidnight = SecondsSinceMidnight(now)
	return snap
}

// Update applies fn to the stored readings under the lock.
func (s *SnapshotStore) Update(fn func(*SensorSnapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

// SecondsSinceMidnight converts a wall-clock time to the DSL's time-of-day
// representation, the same unit time literals parse to.
func SecondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// CToF converts Celsius to Fahrenheit for status reporting.
func CToF(c float64) float64 {
	return c*9/5 + 32
}
