package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CristiGvl/picoCPUFreq/internal/cpufreq"
)

func sampleDeltas() []cpufreq.CoreDelta {
	return []cpufreq.CoreDelta{
		{CoreID: 0, Deltas: []cpufreq.FrequencyDelta{{Label: "300000", Delta: 30}, {Label: "600000", Delta: 30}}},
		{CoreID: 1, Err: cpufreq.ErrValidation},
		{CoreID: 2, Deltas: []cpufreq.FrequencyDelta{{Label: "200000", Delta: -15}}},
	}
}

func TestEncodeLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDeltas()))

	want := "CPU,0\n" +
		"Frequency,Time\n" +
		"300000,30\n" +
		"600000,30\n" +
		"\n" +
		"CPU,2\n" +
		"Frequency,Time\n" +
		"200000,-15\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestRoundTrip(t *testing.T) {
	in := cpufreq.Usable(sampleDeltas())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRoundTripReservedLabels(t *testing.T) {
	in := []cpufreq.CoreDelta{
		{CoreID: 0, Deltas: []cpufreq.FrequencyDelta{
			{Label: "CPU", Delta: 7},
			{Label: "300000", Delta: 1},
			{Label: "Frequency", Delta: 2},
		}},
		{CoreID: 1, Deltas: []cpufreq.FrequencyDelta{
			{Label: "CPU", Delta: 0},
			{Label: "multi\nline", Delta: -3},
			{Label: "CPU", Delta: 9},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"row before section":  "300000,1\n",
		"missing header":      "CPU,0\n300000,1\n",
		"bad core id":         "CPU,x\nFrequency,Time\n",
		"bad delta":           "CPU,0\nFrequency,Time\n300000,ten\n",
		"three columns":       "CPU,0\nFrequency,Time\n300000,1,2\n",
		"section without cpu": "CPU,0\nFrequency,Time\n300000,1\n\n300000,2\n",
		"header after gap":    "CPU,0\n\nFrequency,Time\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "time_in_state_logs_05032026_070809.csv", FileName(ts))
}

type memorySink struct {
	name string
	data []byte
	err  error
}

func (m *memorySink) Persist(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.name = name
	m.data = append([]byte(nil), data...)
	return "mem://" + name, nil
}

func TestWrite(t *testing.T) {
	sink := &memorySink{}
	end := time.Date(2026, time.October, 19, 23, 59, 1, 0, time.UTC)

	loc, err := Write(context.Background(), sink, end, sampleDeltas())
	require.NoError(t, err)

	assert.Equal(t, "mem://time_in_state_logs_19102026_235901.csv", loc)
	assert.True(t, strings.HasPrefix(string(sink.data), "CPU,0\nFrequency,Time\n"))
}

func TestWriteSurfacesSinkError(t *testing.T) {
	sink := &memorySink{err: errors.Join(ErrIO, errors.New("unmounted"))}

	_, err := Write(context.Background(), sink, time.Now(), sampleDeltas())
	assert.ErrorIs(t, err, ErrIO)
}
