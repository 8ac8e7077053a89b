package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Catalog load status for a session.
const (
	StatusLoading = "loading"
	StatusReady   = "ready"
	StatusError   = "error"
)

// Session is one user's in-progress erection plan: the catalog snapshot it was
// opened against plus the plan being edited. The plan is mutated by a single
// request at a time; handlers hold the session lock across each operation.
type Session struct {
	ID        string
	ProjectID int
	UserID    int
	Status    string
	Message   string
	Catalog   Catalog
	Plan      *Plan
	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.Mutex
}

// Lock takes the session's single-writer lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's single-writer lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch refreshes the last-activity timestamp; the cleanup job uses it to
// expire abandoned sessions.
func (s *Session) Touch() { s.UpdatedAt = time.Now() }

// CatalogFetcher produces the raw stock snapshot for a project.
type CatalogFetcher func(ctx context.Context, projectID int) (RawStockSnapshot, error)

// SessionStore is the registry of live planning sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty session registry.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Open fetches and normalizes the project's stock snapshot and registers a new
// planning session for it. If the context is cancelled before the fetch
// resolves, the result is discarded and no session is registered. A fetch
// error still produces a session, in the error state, so the caller can show
// the failure and offer a retry; an empty snapshot produces a ready session
// with an empty catalog and an explanatory message.
func (st *SessionStore) Open(ctx context.Context, projectID, userID int, fetch CatalogFetcher) (*Session, error) {
	raw, err := fetch(ctx, projectID)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	session := &Session{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserID:    userID,
		Plan:      NewPlan(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err != nil {
		session.Status = StatusError
		session.Message = err.Error()
		session.Catalog = make(Catalog)
	} else {
		catalog, message := NormalizeCatalog(raw)
		session.Status = StatusReady
		session.Message = message
		session.Catalog = catalog
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	return session, nil
}

// Reload replaces a session's catalog wholesale with a fresh snapshot. The
// plan is left alone; quantity validity against the new balances is re-checked
// on the next edit or at assembly.
func (st *SessionStore) Reload(ctx context.Context, session *Session, fetch CatalogFetcher) error {
	raw, err := fetch(ctx, session.ProjectID)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	session.Lock()
	defer session.Unlock()
	if err != nil {
		session.Status = StatusError
		session.Message = err.Error()
		return nil
	}
	catalog, message := NormalizeCatalog(raw)
	session.Status = StatusReady
	session.Message = message
	session.Catalog = catalog
	session.Touch()
	return nil
}

// Get looks up a live session by id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("planner session %s not found or expired", id)
	}
	return session, nil
}

// Delete removes a session from the registry.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// PurgeIdle drops sessions with no activity since the cutoff and returns how
// many were removed.
func (st *SessionStore) PurgeIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, session := range st.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
