// Package report serializes time_in_state deltas to the CSV report format
// and persists reports through a Sink.
package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/CristiGvl/picoCPUFreq/internal/cpufreq"
)

// Separator is the column delimiter of the report
const Separator = ','

const (
	namePrefix = "time_in_state_logs_"
	nameLayout = "02012006_150405"
	nameSuffix = ".csv"
)

// ErrIO is returned when a report cannot be stored
var ErrIO = errors.New("report storage unavailable")

// Sink persists a serialized report under name and returns where it was stored
type Sink interface {
	Persist(ctx context.Context, name string, data []byte) (string, error)
}

// FileName returns the report name for a session that ended at t
func FileName(t time.Time) string {
	return namePrefix + t.Format(nameLayout) + nameSuffix
}

// Encode writes one section per usable core: a CPU line, the column header,
// one row per frequency and a blank separator line. Cores with a validation
// error are skipped.
func Encode(w io.Writer, deltas []cpufreq.CoreDelta) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = Separator

	for _, d := range deltas {
		if d.Err != nil {
			continue
		}

		if err := cw.Write([]string{"CPU", strconv.Itoa(d.CoreID)}); err != nil {
			return err
		}
		if err := cw.Write([]string{"Frequency", "Time"}); err != nil {
			return err
		}
		for _, fd := range d.Deltas {
			if err := cw.Write([]string{fd.Label, strconv.FormatInt(fd.Delta, 10)}); err != nil {
				return err
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// Write encodes deltas and hands them to sink under the name for endedAt
func Write(ctx context.Context, sink Sink, endedAt time.Time, deltas []cpufreq.CoreDelta) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, deltas); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	return sink.Persist(ctx, FileName(endedAt), buf.Bytes())
}

// Decode parses a report produced by Encode. A section starts at the first
// record or after a blank line, so a frequency labelled CPU stays a data row.
func Decode(r io.Reader) ([]cpufreq.CoreDelta, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1

	var (
		out      []cpufreq.CoreDelta
		current  *cpufreq.CoreDelta
		header   bool
		lastLine int
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}

		line, _ := cr.FieldPos(0)
		if len(record) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(record))
		}

		// the csv reader drops blank lines, a gap in line numbers is a separator
		newSection := current == nil || line > lastLine+1
		// the second column never spans lines, so its line ends the record
		lastLine, _ = cr.FieldPos(1)

		switch {
		case newSection:
			if record[0] != "CPU" {
				return nil, fmt.Errorf("line %d: expected CPU section, got %q", line, record[0])
			}
			id, err := strconv.Atoi(record[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid core id %q: %w", line, record[1], err)
			}
			out = append(out, cpufreq.CoreDelta{CoreID: id})
			current = &out[len(out)-1]
			header = false
		case !header:
			if record[0] != "Frequency" || record[1] != "Time" {
				return nil, fmt.Errorf("core %d: missing column header", current.CoreID)
			}
			header = true
		default:
			delta, err := strconv.ParseInt(record[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("core %d: invalid time %q: %w", current.CoreID, record[1], err)
			}
			current.Deltas = append(current.Deltas, cpufreq.FrequencyDelta{Label: record[0], Delta: delta})
		}
	}

	return out, nil
}
