package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row for a donor.
func (r *TokenRepo) StoreRefresh(ctx context.Context, donorID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (donor_id, token_hash, expires_at) VALUES (?,?,?)",
		donorID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the donor ID if a non-revoked, non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var (
		donorID   string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT donor_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&donorID, &expiresAt, &revokedAt)
	if err != nil {
		return "", err
	}
	if revokedAt.Valid {
		return "", sql.ErrNoRows
	}
	if time.Now().UTC().After(expiresAt) {
		return "", sql.ErrNoRows
	}
	return donorID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForDonor revokes all of a donor's active tokens.
func (r *TokenRepo) RevokeAllForDonor(ctx context.Context, donorID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE donor_id=? AND revoked_at IS NULL",
		donorID)
	return err
}
