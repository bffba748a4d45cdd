package cpufreq

import (
	"context"
	"errors"
	"fmt"
)

type fakeSource struct {
	tables map[int]string
	errs   map[int]error
	block  chan struct{}
}

func (f *fakeSource) ReadCounters(ctx context.Context, coreID int) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	if err, ok := f.errs[coreID]; ok {
		return nil, err
	}
	text, ok := f.tables[coreID]
	if !ok {
		return nil, fmt.Errorf("cpu%d: %w", coreID, errors.New("no such file or directory"))
	}
	return []byte(text), nil
}

type fakeLister struct {
	entries []string
	err     error
}

func (f fakeLister) ListTopology(context.Context) ([]string, error) {
	return f.entries, f.err
}

func tableOf(rows ...FrequencyTime) *FrequencyTable {
	t := NewFrequencyTable()
	for _, r := range rows {
		t.Set(r.Label, r.Time)
	}
	return t
}

func row(label string, v uint64) FrequencyTime {
	return FrequencyTime{Label: label, Time: v}
}
