// Package publish pushes finished session summaries to a Redis stream
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CristiGvl/picoCPUFreq/internal/session"
)

// ClientOptions configures the Redis connection
type ClientOptions struct {
	Address  string
	Password string
	DB       int
}

// Init connects to Redis and checks the connection
func Init(ctx context.Context, opts *ClientOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Summary is the stream payload for one finished session
type Summary struct {
	SessionID  string        `json:"session_id"`
	Note       string        `json:"note,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    time.Time     `json:"ended_at"`
	ReportPath string        `json:"report_path"`
	Cores      []CoreSummary `json:"cores"`
}

// CoreSummary carries one core's deltas, or the reason it was excluded
type CoreSummary struct {
	CoreID   int              `json:"core_id"`
	Deltas   map[string]int64 `json:"deltas,omitempty"`
	Negative []string         `json:"negative,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewSummary builds the payload for result
func NewSummary(result *session.Result) Summary {
	s := Summary{
		SessionID:  result.SessionID.String(),
		Note:       result.Note,
		StartedAt:  result.StartedAt,
		EndedAt:    result.EndedAt,
		ReportPath: result.ReportPath,
		Cores:      make([]CoreSummary, 0, len(result.Deltas)),
	}

	for _, d := range result.Deltas {
		cs := CoreSummary{CoreID: d.CoreID, Negative: d.Negative}
		if d.Err != nil {
			cs.Error = d.Err.Error()
		} else {
			cs.Deltas = make(map[string]int64, len(d.Deltas))
			for _, fd := range d.Deltas {
				cs.Deltas[fd.Label] = fd.Delta
			}
		}
		s.Cores = append(s.Cores, cs)
	}

	return s
}

// StreamPublisher appends session summaries to a capped Redis stream
type StreamPublisher struct {
	redis  *redis.Client
	stream string
	maxLen int64
}

// NewStreamPublisher creates a publisher writing to stream
func NewStreamPublisher(r *redis.Client, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{redis: r, stream: stream, maxLen: maxLen}
}

// ReportWritten appends the summary of result to the stream
func (p *StreamPublisher) ReportWritten(ctx context.Context, result *session.Result) error {
	data, err := json.Marshal(NewSummary(result))
	if err != nil {
		return fmt.Errorf("publish marshal failed: %w", err)
	}

	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"data": data,
		},
		MaxLen: p.maxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("publish xadd failed: %w", err)
	}

	return nil
}
