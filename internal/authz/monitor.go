package authz

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
)

// Monitor re-validates a valet session's standing on a fixed interval and
// forces logout when the account is deactivated or deleted. Dedicated admin
// sessions are never monitored; admins have no isActive concept.
//
// The transient-failure asymmetry is deliberate: a network error must not
// revoke a live session (fail open), while a confirmed isActive=false read
// always does (fail closed).
type Monitor struct {
	valets     repository.ValetRepository
	terminator *Terminator
	interval   time.Duration
	logger     *zap.Logger
}

// NewMonitor constructs a monitor polling at the given interval.
func NewMonitor(valets repository.ValetRepository, terminator *Terminator, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{valets: valets, terminator: terminator, interval: interval, logger: logger}
}

// Watch polls until the session's context is cancelled. Callers run it in
// its own goroutine per valet session. The first check happens one full
// interval after the session is established, never eagerly.
func (m *Monitor) Watch(s *Session) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	ctx := s.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.check(ctx, s) {
				return
			}
		}
	}
}

// check returns true when the session has been terminated.
func (m *Monitor) check(ctx context.Context, s *Session) bool {
	valet, err := m.valets.GetByID(ctx, s.UserID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		// confirmed: the account is gone from the system
		m.terminator.Terminate(ctx, s, TerminateNotProvisioned)
		return true
	case err != nil:
		// transient lookup failure: never revoke on uncertainty
		m.logger.Warn("status check failed; keeping session",
			zap.String("user_id", s.UserID),
			zap.Error(err))
		return false
	case !valet.IsActive:
		m.terminator.Terminate(ctx, s, TerminateDeactivated)
		return true
	default:
		s.setResolution(&Resolution{Kind: RoleValet, Valet: valet})
		return false
	}
}
