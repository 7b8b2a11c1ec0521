package meter

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrInvalidReading is returned for readings that cannot be metered.
var ErrInvalidReading = errors.New("invalid reading")

// Reading is a single metered sample, keyed by its client-supplied
// timestamp in Unix milliseconds.
type Reading struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Meter accumulates timestamped readings for one live connection.
type Meter struct {
	id string

	mu       sync.RWMutex
	readings map[int64]float64
}

// NewMeter creates an empty meter for a connection.
func NewMeter(id string) *Meter {
	return &Meter{
		id:       id,
		readings: make(map[int64]float64),
	}
}

// ID returns the connection identifier the meter belongs to.
func (m *Meter) ID() string {
	return m.id
}

// AddReading stores value keyed by timestamp and returns the stored value.
// Values are stored raw; rounding happens only when a bill is computed.
// A second reading at the same timestamp overwrites the first.
//
// The transport does not guarantee that messages from one client are
// processed sequentially, so this must hold under concurrent calls.
func (m *Meter) AddReading(value float64, timestamp int64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: not a finite number", ErrInvalidReading)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value %v", ErrInvalidReading, value)
	}

	m.mu.Lock()
	m.readings[timestamp] = value
	m.mu.Unlock()

	return value, nil
}

// Sum returns the arithmetic sum of all stored readings, 0 when empty.
func (m *Meter) Sum() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum float64
	for _, v := range m.readings {
		sum += v
	}
	return sum
}

// Count returns the number of stored readings.
func (m *Meter) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.readings)
}

// Snapshot returns a copy of the readings sorted ascending by timestamp.
// The copy is safe to iterate while writers keep adding readings.
func (m *Meter) Snapshot() []Reading {
	m.mu.RLock()
	out := make([]Reading, 0, len(m.readings))
	for ts, v := range m.readings {
		out = append(out, Reading{Timestamp: ts, Value: v})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
