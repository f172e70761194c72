package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/breeze-mail/breeze/pkg/types"
)

const accountColumns = `id, external_id, user_id, provider, email_address,
	refresh_token, access_token, access_token_expires_at, scope, token_type,
	created_at, updated_at`

func scanAccount(row *sql.Row) (*types.Account, error) {
	var a types.Account
	var refreshToken, accessToken, scope, tokenType sql.NullString
	err := row.Scan(
		&a.Id, &a.ExternalId, &a.UserId, &a.Provider, &a.EmailAddress,
		&refreshToken, &accessToken, &a.AccessTokenExpiresAt, &scope, &tokenType,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.RefreshToken = refreshToken.String
	a.AccessToken = accessToken.String
	a.Scope = scope.String
	a.TokenType = tokenType.String
	return &a, nil
}

// UpsertAccount creates or replaces the connection for (user, provider).
// Reconnecting overwrites the stored credentials wholesale.
func (r *PostgresBackend) UpsertAccount(ctx context.Context, userId uint, provider, emailAddress string, creds *types.Credentials) (*types.Account, error) {
	query := `
		INSERT INTO account (user_id, provider, email_address, refresh_token, access_token, access_token_expires_at, scope, token_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			email_address = EXCLUDED.email_address,
			refresh_token = EXCLUDED.refresh_token,
			access_token = EXCLUDED.access_token,
			access_token_expires_at = EXCLUDED.access_token_expires_at,
			scope = EXCLUDED.scope,
			token_type = EXCLUDED.token_type,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		userId, provider, emailAddress,
		creds.RefreshToken, creds.AccessToken, creds.ExpiresAt, creds.Scope, creds.TokenType,
	)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return account, nil
}

func (r *PostgresBackend) GetAccount(ctx context.Context, userId, accountId uint) (*types.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE id = $1 AND user_id = $2`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountId, userId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrAccountNotFound{AccountId: accountId}
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *PostgresBackend) GetAccountByProvider(ctx context.Context, userId uint, provider string) (*types.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE user_id = $1 AND provider = $2`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, userId, provider))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &types.ErrAccountNotFound{}
	}
	if err != nil {
		return nil, fmt.Errorf("get account by provider: %w", err)
	}
	return account, nil
}

func (r *PostgresBackend) ListAccounts(ctx context.Context, userId uint) ([]types.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []types.Account
	for rows.Next() {
		var a types.Account
		var refreshToken, accessToken, scope, tokenType sql.NullString
		err := rows.Scan(
			&a.Id, &a.ExternalId, &a.UserId, &a.Provider, &a.EmailAddress,
			&refreshToken, &accessToken, &a.AccessTokenExpiresAt, &scope, &tokenType,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.RefreshToken = refreshToken.String
		a.AccessToken = accessToken.String
		a.Scope = scope.String
		a.TokenType = tokenType.String
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountCredentials persists a refreshed access token. The
// refresh token is only rewritten when the provider rotated it.
func (r *PostgresBackend) UpdateAccountCredentials(ctx context.Context, accountId uint, creds *types.Credentials) error {
	query := `
		UPDATE account SET
			access_token = $2,
			access_token_expires_at = $3,
			refresh_token = COALESCE(NULLIF($4, ''), refresh_token),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, accountId, creds.AccessToken, creds.ExpiresAt, creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("update account credentials: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.ErrAccountNotFound{AccountId: accountId}
	}
	return nil
}

func (r *PostgresBackend) DeleteAccount(ctx context.Context, userId, accountId uint) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account WHERE id = $1 AND user_id = $2`, accountId, userId)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &types.ErrAccountNotFound{AccountId: accountId}
	}
	return nil
}
