package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "HTTP_PORT", "HTTP_BIND", "SYSFS_CPU_ROOT",
		"READ_TIMEOUT", "REPORT_SUBDIR", "LEDGER_PATH", "REDIS_ADDR", "REDIS_DB", "REDIS_MAXLEN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.Equal(t, "/sys/devices/system/cpu", cfg.SysfsCPURoot)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "cpu_frequencies", cfg.ReportSubdir)
	assert.Empty(t, cfg.LedgerPath)
	assert.Empty(t, cfg.RedisAddress)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.EqualValues(t, 1000, cfg.RedisMaxLen)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "750ms")
	t.Setenv("SYSFS_CPU_ROOT", "/tmp/cpu")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REPORT_ROOT", "/data")

	cfg := Load()

	assert.Equal(t, 750*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, "/tmp/cpu", cfg.SysfsCPURoot)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "/data", cfg.ReportRoot)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "-2")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 0, cfg.RedisDB)
}
