package cpufreq

import (
	"context"
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/CristiGvl/picoCPUFreq/internal/logger"
)

// coreDirPattern matches cpu0, cpu1, ... cpu127 but not cpufreq or cpuidle
var coreDirPattern = regexp.MustCompile(`^cpu[0-9]+$`)

// logicalCounts is swapped out in tests
var logicalCounts = func(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

// EnumerateCores counts the core directories under the topology root.
// It returns 0 when the listing cannot be read.
func EnumerateCores(ctx context.Context, lister TopologyLister) int {
	entries, err := lister.ListTopology(ctx)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		for _, name := range strings.Fields(entry) {
			if coreDirPattern.MatchString(name) {
				count++
			}
		}
	}
	return count
}

// CoreCount returns the number of cores to sample. It prefers the topology
// listing, then the logical CPU count reported by the host, then 1.
func CoreCount(ctx context.Context, lister TopologyLister, log logger.Logger) int {
	if n := EnumerateCores(ctx, lister); n > 0 {
		return n
	}

	n, err := logicalCounts(ctx)
	if err == nil && n > 0 {
		log.Warn("cpu topology listing unavailable, using logical cpu count", "cores", n)
		return n
	}

	log.Warn("cpu count unknown, sampling a single core", "error", err)
	return 1
}
