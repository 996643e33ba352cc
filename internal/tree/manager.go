package tree

import (
	"context"
	"path/filepath"

	"github.com/koda-agent/koda/internal/storage"
)

// Manager creates, loads, and lists sessions scoped to one workspace,
// matching the workspace layout of spec §6 (<workspace>/.koda/sessions/).
//
// Grounded on original_source/koda/core/tree_session.py's
// TreeSessionManager -- a workspace-level session manager is implied by §6's
// layout but not named as an operation of TreeSession itself in §4.2;
// supplied here per SPEC_FULL.md's "supplemented features".
type Manager struct {
	workspace string
	store     *storage.Storage
	current   *Session
}

// NewManager constructs a Manager rooted at <workspace>/.koda/sessions.
func NewManager(workspace string) *Manager {
	sessionsDir := filepath.Join(workspace, ".koda", "sessions")
	return &Manager{
		workspace: workspace,
		store:     storage.New(sessionsDir),
	}
}

// Current returns the most recently created or loaded session, if any.
func (m *Manager) Current() *Session { return m.current }

// CreateSession allocates a new session rooted at name (default "main").
func (m *Manager) CreateSession(name string) *Session {
	if name == "" {
		name = "main"
	}
	s := NewSession(name)
	m.current = s
	return s
}

// LoadSession loads a session by ID and makes it current.
func (m *Manager) LoadSession(ctx context.Context, sessionID string) (*Session, error) {
	s, err := LoadSession(ctx, m.store, sessionID)
	if err != nil {
		return nil, err
	}
	m.current = s
	return s, nil
}

// SaveCurrent persists the current session, if any.
func (m *Manager) SaveCurrent(ctx context.Context) error {
	if m.current == nil {
		return nil
	}
	return m.current.Save(ctx, m.store)
}

// ListSessions returns all known session IDs.
func (m *Manager) ListSessions(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store exposes the backing storage, e.g. for direct saves of a Session not
// currently "current".
func (m *Manager) Store() *storage.Storage { return m.store }
