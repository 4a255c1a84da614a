package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/config"
)

const (
	loginAttemptsPrefix = "login_attempts:"
	revokedPrefix       = "revoked_session:"
)

// Provider is the local credential store: bcrypt-hashed passwords in the
// user store, JWT session tokens, and Redis for login rate limiting and the
// revoked-session set.
type Provider struct {
	users       userStore
	tokens      *TokenManager
	redis       *redis.Client
	logger      *zap.Logger
	bcryptCost  int
	minPassLen  int
	maxAttempts int
	window      time.Duration
	sessionTTL  time.Duration
	resetTTL    time.Duration
}

// NewProvider builds the provider from configuration.
func NewProvider(cfg config.AuthConfig, users userStore, redisClient *redis.Client, logger *zap.Logger) *Provider {
	return &Provider{
		users:       users,
		tokens:      NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		redis:       redisClient,
		logger:      logger,
		bcryptCost:  cfg.BcryptCost,
		minPassLen:  cfg.MinPasswordLength,
		maxAttempts: cfg.LoginMaxAttempts,
		window:      cfg.LoginWindow(),
		sessionTTL:  cfg.SessionTTL(),
		resetTTL:    time.Duration(cfg.ResetTokenTTLMinutes) * time.Minute,
	}
}

// TokenManager exposes the token manager for the transport middleware.
func (p *Provider) TokenManager() *TokenManager {
	return p.tokens
}

// Authenticate verifies credentials and issues a session token.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if p.tooManyAttempts(ctx, email) {
		return nil, ErrRateLimited
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		p.recordAttempt(ctx, email)
		return nil, ErrInvalidCredential
	}
	p.clearAttempts(ctx, email)

	sessionID := uuid.NewString()
	token, expiresAt, err := p.tokens.GenerateToken(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// SignOut revokes the session so its token is rejected from now on.
func (p *Provider) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return p.redis.Set(ctx, revokedPrefix+sessionID, "1", p.sessionTTL).Err()
}

// IsRevoked reports whether the session has been signed out. A Redis
// failure reads as not revoked; the in-process session registry still
// blocks terminated sessions.
func (p *Provider) IsRevoked(ctx context.Context, sessionID string) bool {
	n, err := p.redis.Exists(ctx, revokedPrefix+sessionID).Result()
	if err != nil {
		p.logger.Warn("revocation check failed", zap.Error(err))
		return false
	}
	return n > 0
}

// RefreshToken reissues the session token. Claims are re-derived from the
// identity, so server-side changes take effect immediately.
func (p *Provider) RefreshToken(_ context.Context, ident *Identity, force bool) (string, error) {
	if !force && ident.Token != "" && time.Until(ident.ExpiresAt) > time.Minute {
		return ident.Token, nil
	}
	token, expiresAt, err := p.tokens.GenerateToken(ident.UserID, ident.Email, ident.SessionID)
	if err != nil {
		return "", err
	}
	ident.Token = token
	ident.ExpiresAt = expiresAt
	return token, nil
}

// SendPasswordReset records a reset token for the account. Delivery is out
// of scope here; the token is logged for the operator.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	user, err := p.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(p.resetTTL)
	if err := p.users.CreateResetToken(ctx, uuid.NewString(), user.ID, token, expiresAt); err != nil {
		return err
	}

	p.logger.Info("password reset issued",
		zap.String("user_id", user.ID),
		zap.String("token", token),
		zap.Time("expires_at", expiresAt))
	return nil
}

// CreateAccount provisions a new credential with a classified error on
// failure (EmailExists, InvalidEmail, WeakPassword).
func (p *Provider) CreateAccount(ctx context.Context, account NewAccount) (string, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if !validEmail(email) {
		return "", ErrInvalidEmail
	}
	if len(account.Password) < p.minPassLen {
		return "", ErrWeakPassword
	}

	hash, err := HashPassword(account.Password, p.bcryptCost)
	if err != nil {
		return "", err
	}

	user := &userRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := p.users.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

func (p *Provider) tooManyAttempts(ctx context.Context, email string) bool {
	if p.maxAttempts <= 0 {
		return false
	}
	count, err := p.redis.Get(ctx, loginAttemptsPrefix+email).Int()
	if err != nil {
		// fail open: rate limiting is best-effort when Redis is down
		return false
	}
	return count >= p.maxAttempts
}

func (p *Provider) recordAttempt(ctx context.Context, email string) {
	key := loginAttemptsPrefix + email
	count, err := p.redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		_ = p.redis.Expire(ctx, key, p.window).Err()
	}
}

func (p *Provider) clearAttempts(ctx context.Context, email string) {
	_ = p.redis.Del(ctx, loginAttemptsPrefix+email).Err()
}
