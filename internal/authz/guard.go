package authz

import (
	"context"

	"go.uber.org/zap"
)

// VerdictState is the access guard's decision for a protected view.
type VerdictState int

const (
	// VerdictPending means no resolution has completed yet; callers render
	// a loading state and perform no side effects.
	VerdictPending VerdictState = iota
	// VerdictAdmin grants full access: dedicated admin or promoted valet.
	VerdictAdmin
	// VerdictActiveValet grants valet-level access. In permissive mode
	// (requireActiveValet=false) a deactivated valet also lands here; the
	// caller can inspect the resolution when standing matters.
	VerdictActiveValet
	// VerdictDenied blocks the view and, where warranted, has already
	// triggered the forced-logout sequence.
	VerdictDenied
)

// DenyReason explains a denial so the surface can show a specific notice
// rather than a blanket "access denied".
type DenyReason string

const (
	DenyDeactivated    DenyReason = "deactivated"
	DenyNotProvisioned DenyReason = "not_provisioned"
	// DenyUnverified covers lookup failure: access is denied on uncertain
	// state, but the session is not terminated, so a retry may succeed.
	DenyUnverified DenyReason = "unverified"
)

// Verdict is the computed authorization decision. Never persisted;
// recomputed from account state on each evaluation.
type Verdict struct {
	State      VerdictState
	Reason     DenyReason
	Resolution *Resolution
}

// Granted reports whether the verdict allows the view to render.
func (v Verdict) Granted() bool {
	return v.State == VerdictAdmin || v.State == VerdictActiveValet
}

// Guard gates protected views. It re-resolves the account on every
// evaluation and enforces consequences for deactivated or unknown accounts.
type Guard struct {
	resolver   *Resolver
	terminator *Terminator
	logger     *zap.Logger
}

// NewGuard constructs the guard.
func NewGuard(resolver *Resolver, terminator *Terminator, logger *zap.Logger) *Guard {
	return &Guard{resolver: resolver, terminator: terminator, logger: logger}
}

// Evaluate computes the verdict for the session. Forced logout fires at
// most once per session: re-evaluating an already-terminated session denies
// without duplicating side effects.
func (g *Guard) Evaluate(ctx context.Context, s *Session, requireActiveValet bool) Verdict {
	if s == nil {
		return Verdict{State: VerdictPending}
	}
	if ended, reason := s.Terminated(); ended {
		return Verdict{State: VerdictDenied, Reason: denyReasonFor(reason), Resolution: s.Snapshot()}
	}

	res, err := g.resolver.Resolve(ctx, s.UserID)
	if err != nil {
		// fail-safe: deny on uncertain state, but leave the session alive
		g.logger.Warn("authorization lookup failed",
			zap.String("user_id", s.UserID),
			zap.Error(err))
		return Verdict{State: VerdictDenied, Reason: DenyUnverified, Resolution: s.Snapshot()}
	}
	s.setResolution(res)

	switch {
	case res.AdminEquivalent():
		return Verdict{State: VerdictAdmin, Resolution: res}
	case res.ActiveValet():
		return Verdict{State: VerdictActiveValet, Resolution: res}
	case res.Kind == RoleValet:
		if !requireActiveValet {
			// deliberate mode: deactivated valets may view a restricted
			// subset of pages, e.g. their account-status page
			return Verdict{State: VerdictActiveValet, Resolution: res}
		}
		g.terminator.Terminate(ctx, s, TerminateDeactivated)
		return Verdict{State: VerdictDenied, Reason: DenyDeactivated, Resolution: res}
	default:
		g.terminator.Terminate(ctx, s, TerminateNotProvisioned)
		return Verdict{State: VerdictDenied, Reason: DenyNotProvisioned, Resolution: res}
	}
}

// Current computes a verdict from the session's existing snapshot without
// any lookup. Returns Pending while the first resolution is in flight.
func (g *Guard) Current(s *Session) Verdict {
	if s == nil {
		return Verdict{State: VerdictPending}
	}
	if ended, reason := s.Terminated(); ended {
		return Verdict{State: VerdictDenied, Reason: denyReasonFor(reason), Resolution: s.Snapshot()}
	}
	res := s.Snapshot()
	if res == nil {
		return Verdict{State: VerdictPending}
	}
	switch {
	case res.AdminEquivalent():
		return Verdict{State: VerdictAdmin, Resolution: res}
	case res.Kind == RoleValet:
		return Verdict{State: VerdictActiveValet, Resolution: res}
	default:
		return Verdict{State: VerdictDenied, Reason: DenyNotProvisioned, Resolution: res}
	}
}

func denyReasonFor(reason TerminationReason) DenyReason {
	switch reason {
	case TerminateDeactivated:
		return DenyDeactivated
	case TerminateNotProvisioned:
		return DenyNotProvisioned
	default:
		return DenyUnverified
	}
}
