package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/breeze-mail/breeze/pkg/types"
)

// generateToken creates a cryptographically secure random token
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateToken mints a bearer token for the user. The raw token is
// returned exactly once; only the bcrypt hash is stored.
func (r *PostgresBackend) CreateToken(ctx context.Context, userId uint, name string, expiresAt *time.Time) (*types.Token, string, error) {
	raw, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash token: %w", err)
	}

	query := `
		INSERT INTO token (user_id, token_hash, name, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, external_id, user_id, token_hash, name, expires_at, created_at, last_used_at
	`

	var t types.Token
	err = r.db.QueryRowContext(ctx, query, userId, string(hash), name, expiresAt).Scan(
		&t.Id, &t.ExternalId, &t.UserId, &t.TokenHash, &t.Name, &t.ExpiresAt, &t.CreatedAt, &t.LastUsedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("create token: %w", err)
	}
	return &t, raw, nil
}

func (r *PostgresBackend) ListTokens(ctx context.Context, userId uint) ([]types.Token, error) {
	query := `
		SELECT id, external_id, user_id, token_hash, name, expires_at, created_at, last_used_at
		FROM token WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []types.Token
	for rows.Next() {
		var t types.Token
		if err := rows.Scan(&t.Id, &t.ExternalId, &t.UserId, &t.TokenHash, &t.Name, &t.ExpiresAt, &t.CreatedAt, &t.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *PostgresBackend) RevokeToken(ctx context.Context, userId uint, externalId string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM token WHERE user_id = $1 AND external_id = $2`, userId, externalId)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("token not found: %s", externalId)
	}
	return nil
}

// AuthorizeToken resolves a raw bearer token to the owning user. bcrypt
// hashes aren't lookupable, so unexpired candidates are scanned and
// compared one by one.
func (r *PostgresBackend) AuthorizeToken(ctx context.Context, rawToken string) (*types.AuthInfo, error) {
	query := `
		SELECT t.id, u.id, u.external_id, u.email, u.created_at, t.token_hash, t.expires_at
		FROM token t
		JOIN app_user u ON u.id = t.user_id
		WHERE t.expires_at IS NULL OR t.expires_at > CURRENT_TIMESTAMP
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tokenId   uint
			user      types.User
			tokenHash string
			expiresAt sql.NullTime
		)

		if err := rows.Scan(&tokenId, &user.Id, &user.ExternalId, &user.Email, &user.CreatedAt, &tokenHash, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}

		if bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(rawToken)) != nil {
			continue
		}

		if expiresAt.Valid && expiresAt.Time.Before(time.Now()) {
			return nil, fmt.Errorf("token expired")
		}

		go func(id uint) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			r.db.ExecContext(ctx, `UPDATE token SET last_used_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
		}(tokenId)

		return &types.AuthInfo{User: &user}, nil
	}

	return nil, fmt.Errorf("invalid token")
}
