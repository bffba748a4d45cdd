package cpufreq

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parser reads and parses the time_in_state table of individual cores
type Parser struct {
	source    CounterSource
	coreCount int
	timeout   time.Duration
}

// NewParser creates a parser for cores [0, coreCount). A zero timeout
// disables the read deadline.
func NewParser(source CounterSource, coreCount int, timeout time.Duration) *Parser {
	return &Parser{
		source:    source,
		coreCount: coreCount,
		timeout:   timeout,
	}
}

// ParseCore reads the counters of one core and parses them
func (p *Parser) ParseCore(ctx context.Context, coreID int) (*FrequencyTable, error) {
	if coreID < 0 || coreID >= p.coreCount {
		return nil, fmt.Errorf("%w: core %d not in [0, %d)", ErrCoreRange, coreID, p.coreCount)
	}

	data, err := p.read(ctx, coreID)
	if err != nil {
		return nil, err
	}

	table, err := ParseTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("core %d: %w", coreID, err)
	}

	return table, nil
}

// read runs the source call in its own goroutine so a source that ignores
// its context still cannot block past the deadline.
func (p *Parser) read(ctx context.Context, coreID int) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		data, err := p.source.ReadCounters(ctx, coreID)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, readContextError(ctx, coreID)
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return nil, readContextError(ctx, coreID)
			}
			return nil, fmt.Errorf("failed to read counters for core %d: %w", coreID, r.err)
		}
		return r.data, nil
	}
}

func readContextError(ctx context.Context, coreID int) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("core %d: %w", coreID, ctx.Err())
	}
	return fmt.Errorf("%w: core %d", ErrTimeout, coreID)
}

// ParseTable parses "<frequency> <time>" lines. Any malformed line rejects
// the whole table. Trailing blank lines are ignored.
func ParseTable(r io.Reader) (*FrequencyTable, error) {
	table := NewFrequencyTable()
	scanner := bufio.NewScanner(r)

	lineNo := 0
	firstBlank := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			if firstBlank == 0 {
				firstBlank = lineNo
			}
			continue
		}
		if firstBlank != 0 {
			return nil, fmt.Errorf("%w: line %d: blank line inside table", ErrFormat, firstBlank)
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected 2 fields, got %d", ErrFormat, lineNo, len(fields))
		}

		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid time %q", ErrFormat, lineNo, fields[1])
		}

		table.Set(fields[0], value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan counters: %w", err)
	}

	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	return table, nil
}
