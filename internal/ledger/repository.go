package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CristiGvl/picoCPUFreq/internal/session"
)

// Entry summarises one written report
type Entry struct {
	SessionID     uuid.UUID `json:"session_id"`
	Note          string    `json:"note,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	ReportPath    string    `json:"report_path"`
	Cores         int       `json:"cores"`
	FailedCores   int       `json:"failed_cores"`
	NegativeCores int       `json:"negative_cores"`
}

// EntryFromResult summarises a finished session
func EntryFromResult(r *session.Result) Entry {
	e := Entry{
		SessionID:  r.SessionID,
		Note:       r.Note,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		ReportPath: r.ReportPath,
		Cores:      len(r.Deltas),
	}
	for _, d := range r.Deltas {
		if d.Err != nil {
			e.FailedCores++
		}
		if len(d.Negative) > 0 {
			e.NegativeCores++
		}
	}
	return e
}

// Repository stores ledger entries
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over an opened ledger
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert adds an entry
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO reports
			(session_id, note, started_at, ended_at, report_path, cores, failed_cores, negative_cores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.SessionID.String(),
		e.Note,
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.EndedAt.UTC().Format(time.RFC3339Nano),
		e.ReportPath,
		e.Cores,
		e.FailedCores,
		e.NegativeCores,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report entry: %w", err)
	}

	return nil
}

// List returns up to limit entries, most recent first
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT session_id, note, started_at, ended_at, report_path, cores, failed_cores, negative_cores
		FROM reports
		ORDER BY ended_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list report entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                  Entry
			id, started, ended string
		)
		if err := rows.Scan(&id, &e.Note, &started, &ended, &e.ReportPath, &e.Cores, &e.FailedCores, &e.NegativeCores); err != nil {
			return nil, fmt.Errorf("failed to scan report entry: %w", err)
		}

		if e.SessionID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", id, err)
		}
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
		}
		if e.EndedAt, err = time.Parse(time.RFC3339Nano, ended); err != nil {
			return nil, fmt.Errorf("invalid ended_at %q: %w", ended, err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ReportWritten records a finished session
func (r *Repository) ReportWritten(ctx context.Context, result *session.Result) error {
	return r.Insert(ctx, EntryFromResult(result))
}
