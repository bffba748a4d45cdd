package cpufreq

import (
	"fmt"
	"math"
)

// ComputeDeltas pairs the cores of two snapshots by position and subtracts
// their counters. A different number of cores fails the whole comparison;
// a core whose id or frequency set changed fails only its own entry.
func ComputeDeltas(initial, final *Snapshot) ([]CoreDelta, error) {
	if initial == nil || final == nil {
		return nil, fmt.Errorf("%w: missing snapshot", ErrValidation)
	}
	if initial.Len() != final.Len() {
		return nil, fmt.Errorf("%w: core count mismatch (%d initial, %d final)",
			ErrValidation, initial.Len(), final.Len())
	}

	deltas := make([]CoreDelta, 0, initial.Len())
	for i := range initial.Cores {
		deltas = append(deltas, coreDelta(initial.Cores[i], final.Cores[i]))
	}

	return deltas, nil
}

func coreDelta(initial, final CoreTable) CoreDelta {
	out := CoreDelta{CoreID: initial.CoreID}

	if initial.CoreID != final.CoreID {
		out.Err = fmt.Errorf("%w: core id mismatch (%d initial, %d final)",
			ErrValidation, initial.CoreID, final.CoreID)
		return out
	}
	if !sameLabels(initial.Table, final.Table) {
		out.Err = fmt.Errorf("%w: frequency set mismatch on core %d", ErrValidation, initial.CoreID)
		return out
	}

	out.Deltas = make([]FrequencyDelta, 0, initial.Table.Len())
	for _, label := range initial.Table.labels {
		before := initial.Table.times[label]
		after := final.Table.times[label]

		delta, ok := signedDiff(before, after)
		if !ok {
			out.Deltas, out.Negative = nil, nil
			out.Err = fmt.Errorf("%w: delta out of range for %s on core %d (%d initial, %d final)",
				ErrValidation, label, initial.CoreID, before, after)
			return out
		}
		if delta < 0 {
			out.Negative = append(out.Negative, label)
		}

		out.Deltas = append(out.Deltas, FrequencyDelta{Label: label, Delta: delta})
	}

	return out
}

// signedDiff returns after-before, or false when it does not fit in an int64
func signedDiff(before, after uint64) (int64, bool) {
	if after >= before {
		diff := after - before
		if diff > math.MaxInt64 {
			return 0, false
		}
		return int64(diff), true
	}

	diff := before - after
	if diff > math.MaxInt64 {
		return 0, false
	}
	return -int64(diff), true
}

func sameLabels(a, b *FrequencyTable) bool {
	if a == nil || b == nil || a.Len() != b.Len() {
		return false
	}
	for label := range a.times {
		if _, ok := b.times[label]; !ok {
			return false
		}
	}
	return true
}

// Usable returns the deltas that validated
func Usable(deltas []CoreDelta) []CoreDelta {
	var out []CoreDelta
	for _, d := range deltas {
		if d.Err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Failed returns the deltas that did not validate
func Failed(deltas []CoreDelta) []CoreDelta {
	var out []CoreDelta
	for _, d := range deltas {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}
