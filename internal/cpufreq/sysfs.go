package cpufreq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultSysfsRoot is where the kernel exposes the CPU topology
const DefaultSysfsRoot = "/sys/devices/system/cpu"

// SysfsSource reads counters and topology straight from sysfs files
type SysfsSource struct {
	root string
}

// NewSysfsSource creates a source rooted at root, or DefaultSysfsRoot when empty
func NewSysfsSource(root string) *SysfsSource {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsSource{root: root}
}

// CounterPath returns the time_in_state path of a core
func (s *SysfsSource) CounterPath(coreID int) string {
	return filepath.Join(s.root, "cpu"+strconv.Itoa(coreID), "cpufreq", "stats", "time_in_state")
}

// ReadCounters returns the raw time_in_state content of a core
func (s *SysfsSource) ReadCounters(ctx context.Context, coreID int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.CounterPath(coreID))
	if err != nil {
		return nil, fmt.Errorf("failed to read time_in_state: %w", err)
	}

	return data, nil
}

// ListTopology returns the entry names under the topology root
func (s *SysfsSource) ListTopology(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list cpu topology: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names, nil
}
