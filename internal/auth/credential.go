package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindfixhq/mindfix/internal/pg"
)

// Credential is a local account: email, display name, and password hash.
// Entitlement fields live in the user record store, not here.
type Credential struct {
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialStorage persists local accounts keyed by email.
type CredentialStorage interface {
	// Create stores a new credential, ErrEmailTaken when the email exists.
	Create(ctx context.Context, c *Credential) error
	// GetByEmail returns the credential or ErrAccountNotFound.
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	// UpdatePasswordHash replaces the stored hash.
	UpdatePasswordHash(ctx context.Context, email string, hash []byte) error
}

// PostgresCredentialStorage implements CredentialStorage on pgx.
type PostgresCredentialStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresCredentialStorage(pool *pgxpool.Pool) *PostgresCredentialStorage {
	if pool == nil {
		panic("auth: pgx pool is required")
	}
	return &PostgresCredentialStorage{pool: pool}
}

func (s *PostgresCredentialStorage) Create(ctx context.Context, c *Credential) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_credentials (email, name, password_hash) VALUES ($1, $2, $3)`,
		c.Email, c.Name, c.PasswordHash,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStorage) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	var c Credential
	err := s.pool.QueryRow(ctx,
		`SELECT email, name, password_hash, created_at, updated_at FROM user_credentials WHERE email = $1`,
		email,
	).Scan(&c.Email, &c.Name, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

func (s *PostgresCredentialStorage) UpdatePasswordHash(ctx context.Context, email string, hash []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE user_credentials SET password_hash = $2, updated_at = now() WHERE email = $1`,
		email, hash,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

var _ CredentialStorage = (*PostgresCredentialStorage)(nil)

// MemoryCredentialStorage keeps accounts in-process, for tests and local-only
// deployments without a database.
type MemoryCredentialStorage struct {
	mu       sync.RWMutex
	accounts map[string]*Credential
}

func NewMemoryCredentialStorage() *MemoryCredentialStorage {
	return &MemoryCredentialStorage{accounts: make(map[string]*Credential)}
}

func (s *MemoryCredentialStorage) Create(ctx context.Context, c *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[c.Email]; ok {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	cp := *c
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.accounts[c.Email] = &cp
	return nil
}

func (s *MemoryCredentialStorage) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.accounts[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryCredentialStorage) UpdatePasswordHash(ctx context.Context, email string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.accounts[email]
	if !ok {
		return ErrAccountNotFound
	}
	c.PasswordHash = hash
	c.UpdatedAt = time.Now().UTC()
	return nil
}

var _ CredentialStorage = (*MemoryCredentialStorage)(nil)
