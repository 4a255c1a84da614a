package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRecord is an identity_users row.
type userRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
}

// userStore abstracts credential persistence so the provider can run against
// Postgres or, when no DSN is configured, in memory.
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*userRecord, error)
	Create(ctx context.Context, user *userRecord) error
	CreateResetToken(ctx context.Context, id, userID, token string, expiresAt time.Time) error
}

type pgxUserStore struct {
	pool *pgxpool.Pool
}

// NewPgxUserStore returns credential persistence over Postgres.
func NewPgxUserStore(pool *pgxpool.Pool) *pgxUserStore {
	return &pgxUserStore{pool: pool}
}

func (s *pgxUserStore) GetByEmail(ctx context.Context, email string) (*userRecord, error) {
	const query = `
        SELECT id, email, password_hash, disabled, created_at
        FROM identity_users WHERE email=$1`

	var user userRecord
	if err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Disabled,
		&user.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &user, nil
}

func (s *pgxUserStore) Create(ctx context.Context, user *userRecord) error {
	const query = `
        INSERT INTO identity_users (id, email, password_hash, disabled)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	if err := s.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Disabled,
	).Scan(&user.CreatedAt); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrEmailExists
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *pgxUserStore) CreateResetToken(ctx context.Context, id, userID, token string, expiresAt time.Time) error {
	const query = `
        INSERT INTO password_resets (id, user_id, token, expires_at)
        VALUES ($1, $2, $3, $4)`

	if _, err := s.pool.Exec(ctx, query, id, userID, token, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

type memUserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*userRecord
}

// NewMemUserStore returns in-process credential persistence for development
// and tests.
func NewMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*userRecord)}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) Create(_ context.Context, user *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrEmailExists
	}
	user.CreatedAt = time.Now()
	copied := *user
	s.byEmail[key] = &copied
	return nil
}

func (s *memUserStore) CreateResetToken(context.Context, string, string, string, time.Time) error {
	return nil
}
