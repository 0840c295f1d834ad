package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindfixhq/mindfix/internal/pg"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("user: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

const userColumns = `email, name, is_lifetime, access_expires_at, subscription_status, payment_verified, stripe_customer_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var (
		u          User
		customerID *string
		rawStatus  string
	)
	err := row.Scan(
		&u.Email,
		&u.Name,
		&u.IsLifetime,
		&u.AccessExpiresAt,
		&rawStatus,
		&u.PaymentVerified,
		&customerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.SubscriptionStatus = ParseStatus(rawStatus)
	if customerID != nil {
		u.BillingCustomerID = *customerID
	}
	return &u, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	u, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, email string, updates Updates) (*User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	cols := []string{"email"}
	args := []any{email}

	appendCol := func(name string, value any) {
		cols = append(cols, name)
		args = append(args, value)
	}

	if updates.Name != nil {
		appendCol("name", *updates.Name)
	}
	if updates.IsLifetime != nil {
		appendCol("is_lifetime", *updates.IsLifetime)
	}
	if updates.AccessExpiresAt != nil {
		appendCol("access_expires_at", *updates.AccessExpiresAt)
	}
	if updates.SubscriptionStatus != nil {
		appendCol("subscription_status", string(*updates.SubscriptionStatus))
	}
	if updates.PaymentVerified != nil {
		appendCol("payment_verified", *updates.PaymentVerified)
	}
	if updates.BillingCustomerID != nil {
		appendCol("stripe_customer_id", *updates.BillingCustomerID)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	// Conflict on email applies only the submitted fields, last writer wins
	// per field. updated_at is bumped unconditionally so an empty update set
	// still records the sync.
	setClauses := []string{"updated_at = now()"}
	for _, col := range cols[1:] {
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	query := fmt.Sprintf(
		`INSERT INTO users (%s) VALUES (%s)
		 ON CONFLICT (email) DO UPDATE SET %s
		 RETURNING %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(setClauses, ", "),
		userColumns,
	)

	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) LinkBillingCustomer(ctx context.Context, email, customerID string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}
	if customerID == "" {
		return "", errors.New("billing customer id is required")
	}

	// COALESCE keeps the first stored id, so the losing writer of a
	// concurrent lazy creation reads back the winner's id instead of
	// overwriting it.
	query := fmt.Sprintf(
		`INSERT INTO users (email, stripe_customer_id) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET
		   stripe_customer_id = COALESCE(users.stripe_customer_id, EXCLUDED.stripe_customer_id),
		   updated_at = now()
		 RETURNING %s`,
		userColumns,
	)

	u, err := scanUser(s.pool.QueryRow(ctx, query, email, customerID))
	if err != nil {
		return "", fmt.Errorf("link billing customer: %w", err)
	}
	return u.BillingCustomerID, nil
}

var _ Store = (*PostgresStore)(nil)
