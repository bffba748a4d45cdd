// Package cpufreq reads the kernel's per-core time_in_state counters and
// computes how long each core spent at every frequency between two snapshots.
package cpufreq

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrFormat is returned when a counter line is not "<frequency> <time>"
	ErrFormat = errors.New("malformed time_in_state line")
	// ErrEmptyTable is returned when a counter source yields no lines
	ErrEmptyTable = errors.New("empty time_in_state table")
	// ErrCollection is returned when no core produced a usable table
	ErrCollection = errors.New("no usable cores")
	// ErrValidation is returned when two snapshots cannot be compared
	ErrValidation = errors.New("snapshot validation failed")
	// ErrTimeout is returned when a counter read does not finish in time
	ErrTimeout = errors.New("counter read timed out")
	// ErrCoreRange is returned for a core id outside the declared core count
	ErrCoreRange = errors.New("core id out of range")
)

// CounterSource returns the raw time_in_state text of one core
type CounterSource interface {
	ReadCounters(ctx context.Context, coreID int) ([]byte, error)
}

// TopologyLister returns the entry names under the CPU topology root
type TopologyLister interface {
	ListTopology(ctx context.Context) ([]string, error)
}

// FrequencyTime is one row of a FrequencyTable
type FrequencyTime struct {
	Label string `json:"frequency"`
	Time  uint64 `json:"time"`
}

// FrequencyTable maps frequency labels to time-in-state counters,
// remembering the order in which labels were first seen.
type FrequencyTable struct {
	labels []string
	times  map[string]uint64
}

// NewFrequencyTable creates an empty table
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{times: make(map[string]uint64)}
}

// Set stores the counter for label. A repeated label keeps its first
// position and takes the new value.
func (t *FrequencyTable) Set(label string, value uint64) {
	if _, ok := t.times[label]; !ok {
		t.labels = append(t.labels, label)
	}
	t.times[label] = value
}

// Get returns the counter for label
func (t *FrequencyTable) Get(label string) (uint64, bool) {
	v, ok := t.times[label]
	return v, ok
}

// Len returns the number of distinct labels
func (t *FrequencyTable) Len() int {
	return len(t.labels)
}

// Labels returns the labels in first-seen order
func (t *FrequencyTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Entries returns the rows in first-seen order
func (t *FrequencyTable) Entries() []FrequencyTime {
	out := make([]FrequencyTime, 0, len(t.labels))
	for _, label := range t.labels {
		out = append(out, FrequencyTime{Label: label, Time: t.times[label]})
	}
	return out
}

// MarshalJSON encodes the table as an ordered list of rows
func (t *FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

// CoreTable is the table read from one core
type CoreTable struct {
	CoreID int             `json:"core_id"`
	Table  *FrequencyTable `json:"frequencies"`
}

// Snapshot is one capture of every readable core, ordered by core id
type Snapshot struct {
	Cores   []CoreTable `json:"cores"`
	TakenAt time.Time   `json:"taken_at"`
}

// Len returns the number of cores captured
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Cores)
}

// FrequencyDelta is the time spent at one frequency between two snapshots
type FrequencyDelta struct {
	Label string `json:"frequency"`
	Delta int64  `json:"time"`
}

// CoreDelta is the per-frequency difference for one core. Err is set when
// the core could not be compared; Deltas is then empty.
type CoreDelta struct {
	CoreID   int              `json:"core_id"`
	Deltas   []FrequencyDelta `json:"deltas,omitempty"`
	Negative []string         `json:"negative,omitempty"`
	Err      error            `json:"-"`
}
