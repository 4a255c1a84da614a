package authz

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
)

// Destination names the surface a completed login should land on.
type Destination string

const (
	DestinationAdminArea Destination = "admin"
	DestinationValetArea Destination = "dashboard"
	DestinationSignIn    Destination = "login"
)

// OutcomeReason explains a login that bounced back to the sign-in surface.
type OutcomeReason string

const (
	ReasonNone           OutcomeReason = ""
	ReasonDeactivated    OutcomeReason = "deactivated"
	ReasonNotProvisioned OutcomeReason = "not_provisioned"
)

// Outcome is the result of a lifecycle operation. Session and Token are set
// only when a session was established.
type Outcome struct {
	Destination Destination
	Reason      OutcomeReason
	Session     *Session
	Token       string
	ExpiresAt   time.Time
	Resolution  *Resolution
}

// Controller orchestrates login, logout and password-reset flows, composing
// the credential store with role resolution.
type Controller struct {
	creds      identity.CredentialStore
	resolver   *Resolver
	valets     repository.ValetRepository
	registry   *Registry
	terminator *Terminator
	monitor    *Monitor
	logger     *zap.Logger
	baseCtx    context.Context
}

// ControllerDeps bundles the controller's collaborators.
type ControllerDeps struct {
	Credentials identity.CredentialStore
	Resolver    *Resolver
	Valets      repository.ValetRepository
	Registry    *Registry
	Terminator  *Terminator
	Monitor     *Monitor
	Logger      *zap.Logger
	// BaseCtx parents every session context; cancelling it on shutdown
	// stops all monitors.
	BaseCtx context.Context
}

// NewController builds the lifecycle controller.
func NewController(deps ControllerDeps) *Controller {
	base := deps.BaseCtx
	if base == nil {
		base = context.Background()
	}
	return &Controller{
		creds:      deps.Credentials,
		resolver:   deps.Resolver,
		valets:     deps.Valets,
		registry:   deps.Registry,
		terminator: deps.Terminator,
		monitor:    deps.Monitor,
		logger:     deps.Logger,
		baseCtx:    base,
	}
}

// Login authenticates and decides the post-login destination. Provider
// failures pass through classified (identity.ErrInvalidCredential and
// friends) so the surface can offer the right recovery action.
func (c *Controller) Login(ctx context.Context, email, password string) (*Outcome, error) {
	ident, err := c.creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// force a refresh so server-side claim changes are observed
	token, err := c.creds.RefreshToken(ctx, ident, true)
	if err != nil {
		c.logger.Warn("token refresh failed; using original token", zap.Error(err))
		token = ident.Token
	}

	res, err := c.resolver.Resolve(ctx, ident.UserID)
	if err != nil {
		// fail-safe: standing unverified, revoke the fresh session
		_ = c.creds.SignOut(ctx, ident.SessionID)
		return nil, err
	}

	switch {
	case res.Kind == RoleAdmin:
		s := c.establish(ident, res, false)
		return &Outcome{Destination: DestinationAdminArea, Session: s, Token: token, ExpiresAt: ident.ExpiresAt, Resolution: res}, nil

	case res.Kind == RoleValet && res.Valet.Promoted():
		// soft promotion rides on a valet record, so it stays monitored
		s := c.establish(ident, res, true)
		return &Outcome{Destination: DestinationAdminArea, Session: s, Token: token, ExpiresAt: ident.ExpiresAt, Resolution: res}, nil

	case res.Kind == RoleValet && res.Valet.IsActive:
		c.touchLastLogin(ctx, ident.UserID)
		s := c.establish(ident, res, true)
		return &Outcome{Destination: DestinationValetArea, Session: s, Token: token, ExpiresAt: ident.ExpiresAt, Resolution: res}, nil

	case res.Kind == RoleValet:
		_ = c.creds.SignOut(ctx, ident.SessionID)
		c.logger.Info("login rejected: account deactivated", zap.String("user_id", ident.UserID))
		return &Outcome{Destination: DestinationSignIn, Reason: ReasonDeactivated, Resolution: res}, nil

	default:
		_ = c.creds.SignOut(ctx, ident.SessionID)
		c.logger.Info("login rejected: account not provisioned", zap.String("user_id", ident.UserID))
		return &Outcome{Destination: DestinationSignIn, Reason: ReasonNotProvisioned, Resolution: res}, nil
	}
}

// Logout ends the session. Local state is always cleared; a credential
// store failure is logged inside the terminator and never surfaces. Safe to
// call repeatedly.
func (c *Controller) Logout(ctx context.Context, s *Session) {
	if s == nil {
		return
	}
	c.terminator.Terminate(ctx, s, TerminateLogout)
	c.registry.Remove(s.ID)
}

// RequestPasswordReset delegates to the credential store.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	return c.creds.SendPasswordReset(ctx, email)
}

func (c *Controller) establish(ident *identity.Identity, res *Resolution, monitored bool) *Session {
	s := NewSession(c.baseCtx, ident, res)
	c.registry.Register(s)
	if monitored && c.monitor != nil {
		go c.monitor.Watch(s)
	}
	c.logger.Info("session established",
		zap.String("session_id", s.ID),
		zap.String("user_id", s.UserID),
		zap.String("role", res.Kind.String()),
		zap.Bool("monitored", monitored))
	return s
}

// touchLastLogin stamps the valet record. Best effort: a write failure must
// never fail the login.
func (c *Controller) touchLastLogin(ctx context.Context, valetID string) {
	if err := c.valets.UpdateFields(ctx, valetID, map[string]any{"lastLogin": time.Now()}); err != nil {
		c.logger.Warn("lastLogin update failed", zap.String("valet_id", valetID), zap.Error(err))
	}
}
