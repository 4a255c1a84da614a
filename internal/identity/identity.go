// Package identity provides the credential store: the external authority for
// email/password verification and session tokens. The application core only
// depends on the interfaces here; a local Postgres/Redis-backed provider
// implements them.
package identity

import (
	"context"
	"errors"
	"time"
)

// Classified authentication failures. The sign-in surface offers different
// recovery actions per failure, so these must stay distinguishable.
var (
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUserDisabled      = errors.New("credential disabled")
	ErrRateLimited       = errors.New("too many sign-in attempts")
	ErrUserNotFound      = errors.New("no account for that email")
)

// Classified provisioning failures.
var (
	ErrEmailExists  = errors.New("an account with this email already exists")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password is too weak")
)

// ErrUnavailable indicates the identity backend could not be reached.
var ErrUnavailable = errors.New("identity provider unavailable")

// Identity is a verified credential-store identity with an issued session.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// CredentialStore verifies credentials and manages credential-store sessions.
type CredentialStore interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, sessionID string) error
	SendPasswordReset(ctx context.Context, email string) error
	// RefreshToken reissues the session token. With force set it always
	// mints a fresh token so server-side claim changes are observed.
	RefreshToken(ctx context.Context, identity *Identity, force bool) (string, error)
}

// RevocationChecker reports whether a session has been revoked. Used by the
// transport layer to reject tokens for terminated sessions.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, sessionID string) bool
}

// NewAccount is the input to account provisioning.
type NewAccount struct {
	Email    string
	Password string
	FullName string
}

// Provisioner creates credential-store accounts. Consumed as a black box by
// the admin add-valet flow and self-service signup.
type Provisioner interface {
	CreateAccount(ctx context.Context, account NewAccount) (string, error)
}
