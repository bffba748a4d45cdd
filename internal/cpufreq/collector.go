package cpufreq

import (
	"context"
	"fmt"
	"time"

	"github.com/CristiGvl/picoCPUFreq/internal/logger"
)

// Collector captures a full-system snapshot
type Collector struct {
	source  CounterSource
	timeout time.Duration
	log     logger.Logger
	now     func() time.Time
}

// NewCollector creates a collector reading from source with a per-core read timeout
func NewCollector(source CounterSource, timeout time.Duration, log logger.Logger) *Collector {
	return &Collector{
		source:  source,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// Collect parses cores [0, coreCount). Cores that fail to parse are logged
// and left out; the snapshot only fails when no core is usable.
func (c *Collector) Collect(ctx context.Context, coreCount int) (*Snapshot, error) {
	parser := NewParser(c.source, coreCount, c.timeout)
	snapshot := &Snapshot{TakenAt: c.now().UTC()}

	for coreID := 0; coreID < coreCount; coreID++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := parser.ParseCore(ctx, coreID)
		if err != nil {
			c.log.Warn("skipping core", "core", coreID, "error", err)
			continue
		}

		snapshot.Cores = append(snapshot.Cores, CoreTable{CoreID: coreID, Table: table})
	}

	if len(snapshot.Cores) == 0 {
		return nil, fmt.Errorf("%w: 0 of %d cores readable", ErrCollection, coreCount)
	}

	c.log.Debug("snapshot collected", "cores", len(snapshot.Cores), "declared", coreCount)

	return snapshot, nil
}
