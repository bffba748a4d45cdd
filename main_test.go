package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/picoCPUFreq/internal/ledger"
	"github.com/CristiGvl/picoCPUFreq/internal/logger"
)

func setupEnv(t *testing.T, withCore bool) (reportRoot, ledgerPath string) {
	t.Helper()

	sysfs := t.TempDir()
	if withCore {
		dir := filepath.Join(sysfs, "cpu0", "cpufreq", "stats")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "time_in_state"), []byte("300000 100\n600000 5\n"), 0o644))
	}

	reportRoot = t.TempDir()
	ledgerPath = filepath.Join(t.TempDir(), "ledger.db")

	t.Setenv("SYSFS_CPU_ROOT", sysfs)
	t.Setenv("REPORT_ROOT", reportRoot)
	t.Setenv("REPORT_SUBDIR", "cpu_frequencies")
	t.Setenv("LEDGER_PATH", ledgerPath)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	return reportRoot, ledgerPath
}

func TestRunOneShotSession(t *testing.T) {
	reportRoot, ledgerPath := setupEnv(t, true)

	code := run([]string{"-duration", "10ms", "-note", "cli"})
	require.Equal(t, 0, code)

	reports, err := filepath.Glob(filepath.Join(reportRoot, "cpu_frequencies", "time_in_state_logs_*.csv"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	// the ledger was closed on the way out
	assert.NoFileExists(t, ledgerPath+"-wal")

	db, err := ledger.Open(ledgerPath, logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	entries, err := ledger.NewRepository(db).List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cli", entries[0].Note)
	assert.Equal(t, reports[0], entries[0].ReportPath)
}

func TestRunFailingSessionClosesLedger(t *testing.T) {
	_, ledgerPath := setupEnv(t, false)

	code := run([]string{"-duration", "10ms"})
	assert.Equal(t, 1, code)

	assert.FileExists(t, ledgerPath)
	assert.NoFileExists(t, ledgerPath+"-wal")
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	setupEnv(t, true)
	assert.Equal(t, 2, run([]string{"-nope"}))
}
