package authz

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

const (
	sessionKey = "auth_session"
	verdictKey = "auth_verdict"
)

// AuthMiddleware validates bearer tokens and attaches the live session.
type AuthMiddleware struct {
	tokens      *identity.TokenManager
	registry    *Registry
	revocations identity.RevocationChecker
	logger      *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *identity.TokenManager, registry *Registry, revocations identity.RevocationChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, registry: registry, revocations: revocations, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("", "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("", "invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("", "invalid token")
	}

	if m.revocations != nil && m.revocations.IsRevoked(c.UserContext(), claims.SessionID) {
		return apperrors.NewUnauthorized("SESSION_REVOKED", "session has been signed out")
	}

	session, ok := m.registry.Get(claims.SessionID)
	if !ok {
		return apperrors.NewUnauthorized("SESSION_EXPIRED", "session not found; sign in again")
	}

	if ended, reason := session.Terminated(); ended {
		// serve the specific notice once, then drop the tombstone
		m.registry.Remove(session.ID)
		return terminationError(reason)
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

func terminationError(reason TerminationReason) error {
	switch reason {
	case TerminateDeactivated:
		return apperrors.NewUnauthorized("ACCOUNT_DEACTIVATED",
			"Your account has been deactivated. Please contact your administrator.")
	case TerminateNotProvisioned:
		return apperrors.NewUnauthorized("ACCOUNT_NOT_FOUND",
			"Account not found in system. Please contact an administrator.")
	default:
		return apperrors.NewUnauthorized("", "session ended; sign in again")
	}
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*Session)
	return session, ok
}

// VerdictFromContext retrieves the guard verdict stored by a route guard.
func VerdictFromContext(c *fiber.Ctx) (Verdict, bool) {
	val := c.Locals(verdictKey)
	if val == nil {
		return Verdict{}, false
	}
	verdict, ok := val.(Verdict)
	return verdict, ok
}

// RequireAdmin admits dedicated admins and promoted valets only.
func RequireAdmin(guard *Guard) fiber.Handler {
	return requireVerdict(guard, false, func(v Verdict) bool {
		return v.State == VerdictAdmin
	})
}

// RequireActiveValet admits active valets and admin-equivalents.
func RequireActiveValet(guard *Guard) fiber.Handler {
	return requireVerdict(guard, true, Verdict.Granted)
}

// AllowDeactivated admits valets regardless of standing, for the restricted
// account-status surface.
func AllowDeactivated(guard *Guard) fiber.Handler {
	return requireVerdict(guard, false, Verdict.Granted)
}

func requireVerdict(guard *Guard, requireActive bool, allowed func(Verdict) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("", "authentication required")
		}
		verdict := guard.Evaluate(c.UserContext(), session, requireActive)
		if !allowed(verdict) {
			return denialError(verdict)
		}
		c.Locals(verdictKey, verdict)
		return c.Next()
	}
}

func denialError(verdict Verdict) error {
	switch verdict.Reason {
	case DenyDeactivated:
		return apperrors.NewUnauthorized("ACCOUNT_DEACTIVATED",
			"Your account has been deactivated. Please contact your administrator.")
	case DenyNotProvisioned:
		return apperrors.NewUnauthorized("ACCOUNT_NOT_FOUND",
			"Account not found in system. Please contact an administrator.")
	case DenyUnverified:
		return apperrors.NewUnavailable("Unable to verify account status. Please try again.", nil)
	default:
		return apperrors.NewForbidden("You do not have permission to access this area.")
	}
}
