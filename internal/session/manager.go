package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown or already finished session id
var ErrNotFound = errors.New("session not found")

// Manager keeps the sessions started through a long-running service
type Manager struct {
	profiler *Profiler

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty manager
func NewManager(profiler *Profiler) *Manager {
	return &Manager{
		profiler: profiler,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Begin starts and tracks a new session
func (m *Manager) Begin(ctx context.Context, note string) (*Session, error) {
	s, err := m.profiler.Begin(ctx, note)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// End finishes a tracked session. The session is released even when ending fails.
func (m *Manager) End(ctx context.Context, id uuid.UUID) (*Result, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	return m.profiler.End(ctx, s)
}

// Discard drops a session without writing a report
func (m *Manager) Discard(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Active returns the running sessions, oldest first
func (m *Manager) Active() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Profiler returns the underlying profiler
func (m *Manager) Profiler() *Profiler {
	return m.profiler
}
