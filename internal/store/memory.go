// Package store provides keyed persistence of interview sessions.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillgate/screener/internal/interview"
)

// Memory is an in-process session store. Each session has its own lock, so
// turns on the same session are serialized while independent sessions never
// contend. Reads hand out deep copies; an update mutates a copy and swaps it
// in only when the callback succeeds, so a failed turn cannot leave a session
// half-mutated.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session *interview.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*entry)}
}

// Create stores a new session. An already-taken ID is rejected with
// ErrSessionExists.
func (m *Memory) Create(_ context.Context, s *interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s: %w", s.ID, interview.ErrSessionExists)
	}

	m.sessions[s.ID] = &entry{session: s.Clone()}
	return nil
}

// Get returns a snapshot of the session.
func (m *Memory) Get(_ context.Context, id string) (*interview.Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update runs fn on a working copy under the session's lock and commits the
// copy only when fn returns nil.
func (m *Memory) Update(ctx context.Context, id string, fn func(*interview.Session) error) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return err
	}

	e.session = working
	return nil
}

// Delete removes a terminated session. Unknown IDs are a no-op.
func (m *Memory) Delete(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Memory) entry(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, interview.ErrSessionNotFound)
	}
	return e, nil
}
