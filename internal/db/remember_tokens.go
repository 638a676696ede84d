package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edumate/internal/models"
)

type RememberTokenRepository struct {
	db *DB
}

func NewRememberTokenRepository(db *DB) *RememberTokenRepository {
	return &RememberTokenRepository{db: db}
}

// Replace deletes every existing token for the account and inserts the new
// one in a single transaction, so concurrent issuance converges to exactly
// one live token per account.
func (r *RememberTokenRepository) Replace(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) (*models.RememberToken, error) {
	id, err := GenerateID("rmt")
	if err != nil {
		return nil, fmt.Errorf("generating remember token ID: %w", err)
	}
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting remember token replacement transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM remember_tokens WHERE account_id = ?`, accountID); err != nil {
		return nil, fmt.Errorf("deleting prior remember tokens: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO remember_tokens (id, account_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, accountID, tokenHash, expiresAt.UTC(), now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating remember token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing remember token replacement: %w", err)
	}

	return &models.RememberToken{
		ID:        id,
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// FindValidAccount resolves a token hash to its owning account. Expiry is
// checked lazily here; expired rows are simply never returned.
func (r *RememberTokenRepository) FindValidAccount(ctx context.Context, tokenHash string) (*models.Account, error) {
	var a models.Account
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.email, a.password_hash, a.created_at, a.last_login_at, a.profile_complete
           FROM accounts a
           JOIN remember_tokens t ON a.id = t.account_id
          WHERE t.token_hash = ? AND t.expires_at > ?`,
		tokenHash, time.Now().UTC(),
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &lastLoginAt, &a.ProfileComplete)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying remember token: %w", err)
	}

	a.LastLoginAt = nullTimeToPtr(lastLoginAt)

	return &a, nil
}

// DeleteForAccount revokes all tokens for the account. Idempotent: revoking
// an account with no tokens is not an error.
func (r *RememberTokenRepository) DeleteForAccount(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM remember_tokens WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("deleting remember tokens: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM remember_tokens WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired remember tokens: %w", err)
	}

	return result.RowsAffected()
}
