package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edumate/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. Uniqueness is enforced by the UNIQUE
// constraint on email, so concurrent registrations with the same address
// resolve to exactly one success and one ErrDuplicate.
func (r *AccountRepository) Create(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	id, err := GenerateID("acc")
	if err != nil {
		return nil, fmt.Errorf("generating account ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, created_at, profile_complete) VALUES (?, ?, ?, ?, FALSE)`,
		id, email, passwordHash, now,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at, last_login_at, profile_complete FROM accounts WHERE id = ?`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash, created_at, last_login_at, profile_complete FROM accounts WHERE email = ?`, email)
}

// TouchLastLogin records a successful interactive login.
func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return checkRowsAffected(result)
}

// Delete removes an account; profiles and remember tokens go with it via
// ON DELETE CASCADE. No caller exposes this yet, but the cascade invariant
// has to hold the day one does.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	var a models.Account
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&lastLoginAt,
		&a.ProfileComplete,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	a.LastLoginAt = nullTimeToPtr(lastLoginAt)

	return &a, nil
}
