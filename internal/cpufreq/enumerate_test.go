package cpufreq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CristiGvl/picoCPUFreq/internal/logger"
)

func TestEnumerateCores(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    int
	}{
		{
			name:    "typical listing",
			entries: []string{"cpu0", "cpu1", "cpufreq", "cpuidle", "kernel_max", "online", "possible"},
			want:    2,
		},
		{
			name:    "more than ten cores",
			entries: []string{"cpu0", "cpu1", "cpu2", "cpu3", "cpu4", "cpu5", "cpu6", "cpu7", "cpu8", "cpu9", "cpu10", "cpu11"},
			want:    12,
		},
		{
			name:    "space separated ls output",
			entries: []string{"cpu0 cpu1  cpu2", "cpufreq", " cpu3 "},
			want:    4,
		},
		{
			name:    "look-alikes",
			entries: []string{"cpu", "cpu-1", "cpu1a", "xcpu1", "CPU1", "cpu01"},
			want:    1,
		},
		{name: "empty", entries: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnumerateCores(context.Background(), fakeLister{entries: tt.entries})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumerateCoresListingError(t *testing.T) {
	got := EnumerateCores(context.Background(), fakeLister{entries: []string{"cpu0"}, err: errors.New("unreadable")})
	assert.Equal(t, 0, got)
}

func TestCoreCountFallbacks(t *testing.T) {
	orig := logicalCounts
	t.Cleanup(func() { logicalCounts = orig })

	log := logger.Nop()
	broken := fakeLister{err: errors.New("unreadable")}

	logicalCounts = func(context.Context) (int, error) { return 6, nil }
	assert.Equal(t, 3, CoreCount(context.Background(), fakeLister{entries: []string{"cpu0", "cpu1", "cpu2"}}, log))
	assert.Equal(t, 6, CoreCount(context.Background(), broken, log))

	logicalCounts = func(context.Context) (int, error) { return 0, errors.New("not implemented") }
	assert.Equal(t, 1, CoreCount(context.Background(), broken, log))
}
