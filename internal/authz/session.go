package authz

import (
	"context"
	"sync"
	"time"

	"github.com/davisgreg1/valet-time-keeping/internal/identity"
)

// TerminationReason records why a session ended.
type TerminationReason string

const (
	TerminateLogout         TerminationReason = "logout"
	TerminateDeactivated    TerminationReason = "deactivated"
	TerminateNotProvisioned TerminationReason = "not_provisioned"
)

// Session is an established sign-in: a credential-store identity plus the
// resolved account snapshot. It owns a context that the status monitor runs
// under; terminating the session cancels it.
type Session struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	resolution *Resolution
	terminated bool
	endReason  TerminationReason
	once       sync.Once
}

// NewSession wraps a verified identity and its initial role resolution.
func NewSession(parent context.Context, ident *identity.Identity, res *Resolution) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:         ident.SessionID,
		UserID:     ident.UserID,
		Email:      ident.Email,
		CreatedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
		resolution: res,
	}
}

// Context is cancelled when the session terminates for any reason.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Snapshot returns the most recent role resolution, or nil if none has
// completed yet.
func (s *Session) Snapshot() *Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution
}

// setResolution refreshes the snapshot. A lookup that completes after the
// session has already ended is discarded rather than applied.
func (s *Session) setResolution(res *Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.resolution = res
}

// Terminated reports whether the session has ended, and why.
func (s *Session) Terminated() (bool, TerminationReason) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminated, s.endReason
}

// markTerminated flips the session to terminated exactly once. Returns true
// on the first call only; repeated termination attempts are no-ops.
func (s *Session) markTerminated(reason TerminationReason) bool {
	first := false
	s.once.Do(func() {
		s.mu.Lock()
		s.terminated = true
		s.endReason = reason
		s.mu.Unlock()
		s.cancel()
		first = true
	})
	return first
}

// Registry tracks live sessions by session id. One logical session per
// authenticated user per device; no cross-device coordination.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds a session.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get looks up a session by id.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Remove drops a session from the registry.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
