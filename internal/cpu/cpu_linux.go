//go:build linux

package cpu

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// LinuxReader implements host CPU information for Linux
type LinuxReader struct {
	sysfsRoot string
}

// newPlatformReader creates a new Linux CPU reader
func newPlatformReader(sysfsRoot string) Reader {
	return &LinuxReader{sysfsRoot: sysfsRoot}
}

// GetInfo returns CPU information
func (r *LinuxReader) GetInfo(ctx context.Context) (*Info, error) {
	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}

	info := &Info{Threads: len(cpuInfo)}
	if len(cpuInfo) > 0 {
		info.Model = cpuInfo[0].ModelName
		info.Frequency = cpuInfo[0].Mhz
		info.Cores = int(cpuInfo[0].Cores)
	}

	if threads, err := cpu.CountsWithContext(ctx, true); err == nil && threads > 0 {
		info.Threads = threads
	}

	if content, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		if cores := countPhysicalCores(string(content)); cores > 0 {
			info.Cores = cores
		}
	}
	if info.Cores == 0 || info.Cores > info.Threads {
		info.Cores = info.Threads
	}

	info.Governor = r.readGovernor()

	return info, nil
}

// readGovernor returns the scaling governor of cpu0, empty when cpufreq is absent
func (r *LinuxReader) readGovernor() string {
	data, err := os.ReadFile(filepath.Join(r.sysfsRoot, "cpu0", "cpufreq", "scaling_governor"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
