// Package session runs begin/end profiling sessions over time_in_state
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CristiGvl/picoCPUFreq/internal/cpufreq"
	"github.com/CristiGvl/picoCPUFreq/internal/logger"
	"github.com/CristiGvl/picoCPUFreq/internal/report"
)

// ErrNoUsableCores is returned when every core failed validation at session end
var ErrNoUsableCores = errors.New("no core validated")

// Session is a started profiling session holding its baseline snapshot
type Session struct {
	ID        uuid.UUID `json:"id"`
	Note      string    `json:"note,omitempty"`
	CoreCount int       `json:"core_count"`
	StartedAt time.Time `json:"started_at"`

	initial *cpufreq.Snapshot
}

// Baseline returns the snapshot captured when the session began
func (s *Session) Baseline() *cpufreq.Snapshot {
	return s.initial
}

// Result is the outcome of a finished session
type Result struct {
	SessionID  uuid.UUID           `json:"session_id"`
	Note       string              `json:"note,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	EndedAt    time.Time           `json:"ended_at"`
	Initial    *cpufreq.Snapshot   `json:"-"`
	Final      *cpufreq.Snapshot   `json:"-"`
	Deltas     []cpufreq.CoreDelta `json:"deltas"`
	ReportPath string              `json:"report_path"`
}

// Observer is notified after a report has been stored
type Observer interface {
	ReportWritten(ctx context.Context, result *Result) error
}

// Profiler captures snapshots and writes the session report
type Profiler struct {
	lister    cpufreq.TopologyLister
	collector *cpufreq.Collector
	sink      report.Sink
	observers []Observer
	log       logger.Logger
	now       func() time.Time
}

// NewProfiler wires the collaborators of a profiling session
func NewProfiler(lister cpufreq.TopologyLister, collector *cpufreq.Collector, sink report.Sink, log logger.Logger, observers ...Observer) *Profiler {
	return &Profiler{
		lister:    lister,
		collector: collector,
		sink:      sink,
		observers: observers,
		log:       log,
		now:       time.Now,
	}
}

// Begin counts the cores and captures the baseline snapshot
func (p *Profiler) Begin(ctx context.Context, note string) (*Session, error) {
	coreCount := cpufreq.CoreCount(ctx, p.lister, p.log)

	initial, err := p.collector.Collect(ctx, coreCount)
	if err != nil {
		return nil, fmt.Errorf("failed to capture baseline: %w", err)
	}

	s := &Session{
		ID:        uuid.New(),
		Note:      note,
		CoreCount: coreCount,
		StartedAt: p.now().UTC(),
		initial:   initial,
	}

	p.log.Info("cpu profiling started", "session", s.ID, "cores", coreCount, "readable", initial.Len())

	return s, nil
}

// End captures the final snapshot, computes deltas and writes the report.
// A nil session, or one without a baseline, is a no-op.
func (p *Profiler) End(ctx context.Context, s *Session) (*Result, error) {
	if s == nil || s.initial == nil {
		p.log.Info("no baseline captured, skipping report")
		return nil, nil
	}

	log := p.log.With("session", s.ID)

	final, err := p.collector.Collect(ctx, s.CoreCount)
	if err != nil {
		return nil, fmt.Errorf("failed to capture final snapshot: %w", err)
	}
	endedAt := p.now().UTC()

	deltas, err := cpufreq.ComputeDeltas(s.initial, final)
	if err != nil {
		log.Error("initial and final snapshots are not comparable", "error", err)
		return nil, err
	}

	for _, d := range cpufreq.Failed(deltas) {
		log.Error("core excluded from report", "core", d.CoreID, "error", d.Err)
	}
	for _, d := range deltas {
		if len(d.Negative) > 0 {
			log.Warn("time_in_state counter went backwards", "core", d.CoreID, "frequencies", d.Negative)
		}
	}

	if len(cpufreq.Usable(deltas)) == 0 {
		return nil, fmt.Errorf("%w: %w", cpufreq.ErrValidation, ErrNoUsableCores)
	}

	path, err := report.Write(ctx, p.sink, endedAt, deltas)
	if err != nil {
		log.Error("failed to write report", "error", err)
		return nil, err
	}

	result := &Result{
		SessionID:  s.ID,
		Note:       s.Note,
		StartedAt:  s.StartedAt,
		EndedAt:    endedAt,
		Initial:    s.initial,
		Final:      final,
		Deltas:     deltas,
		ReportPath: path,
	}

	log.Info("cpu profiling finished", "report", path, "cores", len(deltas))

	for _, o := range p.observers {
		if err := o.ReportWritten(ctx, result); err != nil {
			log.Warn("report observer failed", "observer", fmt.Sprintf("%T", o), "error", err)
		}
	}

	return result, nil
}

// Snapshot captures a one-off snapshot outside any session
func (p *Profiler) Snapshot(ctx context.Context) (*cpufreq.Snapshot, error) {
	return p.collector.Collect(ctx, cpufreq.CoreCount(ctx, p.lister, p.log))
}

// CoreCount returns the number of cores a new session would sample
func (p *Profiler) CoreCount(ctx context.Context) int {
	return cpufreq.CoreCount(ctx, p.lister, p.log)
}
