package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkPersist(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root, "cpu_frequencies")

	path, err := sink.Persist(context.Background(), "time_in_state_logs_01012026_000000.csv", []byte("CPU,0\n"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "cpu_frequencies", "time_in_state_logs_01012026_000000.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CPU,0\n", string(data))
}

func TestFileSinkNeverOverwrites(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "reports")
	ctx := context.Background()

	first, err := sink.Persist(ctx, "a.csv", []byte("first"))
	require.NoError(t, err)

	second, err := sink.Persist(ctx, "a.csv", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sink.Dir(), "a_1.csv"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileSinkUnwritableRoot(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	sink := NewFileSink(blocker, "cpu_frequencies")
	_, err := sink.Persist(context.Background(), "a.csv", []byte("x"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestFileSinkRejectsPathNames(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "reports")

	_, err := sink.Persist(context.Background(), "../escape.csv", []byte("x"))
	assert.ErrorIs(t, err, ErrIO)
}
