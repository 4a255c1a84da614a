package authz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/observability"
)

// Terminator performs the forced-logout sequence: revoke the credential
// store session, mark the local session ended, emit the termination event.
// The sequence runs at most once per session no matter how many callers race
// into it; the status monitor and the access guard both converge here.
type Terminator struct {
	creds      identity.CredentialStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTerminator constructs the terminator.
func NewTerminator(creds identity.CredentialStore, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Terminator {
	return &Terminator{creds: creds, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Terminate ends the session. Returns true if this call performed the
// termination, false if the session had already ended. Credential-store
// sign-out failure is reported but never blocks clearing local state.
func (t *Terminator) Terminate(ctx context.Context, s *Session, reason TerminationReason) bool {
	if s == nil {
		return false
	}
	if !s.markTerminated(reason) {
		return false
	}

	// markTerminated cancelled the session context; the monitor calls in on
	// that context, so revocation and the event run detached from it.
	ctx = context.WithoutCancel(ctx)

	if err := t.creds.SignOut(ctx, s.ID); err != nil {
		t.logger.Warn("credential store sign-out failed",
			zap.String("session_id", s.ID),
			zap.Error(err))
	}

	t.metrics.RecordForcedLogout(string(reason))
	_ = t.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionTerminated,
		UserID:    s.UserID,
		Timestamp: time.Now(),
		Payload: events.SessionTerminatedPayload{
			SessionID: s.ID,
			Reason:    string(reason),
		},
	})

	t.logger.Info("session terminated",
		zap.String("session_id", s.ID),
		zap.String("user_id", s.UserID),
		zap.String("reason", string(reason)))
	return true
}
