package cpufreq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/picoCPUFreq/internal/logger"
)

func TestCollectPartialFailure(t *testing.T) {
	src := &fakeSource{tables: map[int]string{
		0: "300000 100\n600000 50\n",
		1: "garbage line here\n",
		2: "",
		3: "200000 10\n",
	}}
	c := NewCollector(src, time.Second, logger.Nop())

	snap, err := c.Collect(context.Background(), 5)
	require.NoError(t, err)

	require.Equal(t, 2, snap.Len())
	assert.Equal(t, 0, snap.Cores[0].CoreID)
	assert.Equal(t, 3, snap.Cores[1].CoreID)
	assert.Equal(t, []string{"300000", "600000"}, snap.Cores[0].Table.Labels())
	assert.False(t, snap.TakenAt.IsZero())
}

func TestCollectLengthMatchesSuccessfulCores(t *testing.T) {
	for k := 0; k <= 4; k++ {
		tables := map[int]string{}
		for i := 0; i < k; i++ {
			tables[i] = "100 1\n"
		}
		c := NewCollector(&fakeSource{tables: tables}, time.Second, logger.Nop())

		snap, err := c.Collect(context.Background(), 4)
		if k == 0 {
			assert.ErrorIs(t, err, ErrCollection)
			assert.Nil(t, snap)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, k, snap.Len())
	}
}

func TestCollectZeroCores(t *testing.T) {
	c := NewCollector(&fakeSource{}, time.Second, logger.Nop())

	_, err := c.Collect(context.Background(), 0)
	assert.ErrorIs(t, err, ErrCollection)
}

func TestCollectCanceled(t *testing.T) {
	c := NewCollector(&fakeSource{tables: map[int]string{0: "1 1"}}, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrCollection)
}
