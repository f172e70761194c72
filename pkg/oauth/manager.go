package oauth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/types"
)

// AccountTokenStore persists refreshed credentials for an account.
type AccountTokenStore interface {
	UpdateAccountCredentials(ctx context.Context, accountId uint, creds *types.Credentials) error
}

// TokenManager produces a fresh access token for every upstream call.
// The refresh is unconditional: the stored expiry is informational only
// and is never consulted to skip the round trip. Tokens are persisted
// before the caller uses them so a crash mid-action cannot strand a
// newer token than the one on record.
type TokenManager struct {
	google *GoogleClient
	store  AccountTokenStore
}

func NewTokenManager(google *GoogleClient, store AccountTokenStore) *TokenManager {
	return &TokenManager{google: google, store: store}
}

// FreshAccessToken refreshes the account's access token and persists it.
// A refresh failure means the refresh token was revoked or expired; the
// caller should surface a reconnect prompt.
func (m *TokenManager) FreshAccessToken(ctx context.Context, account *types.Account) (string, error) {
	if account.RefreshToken == "" {
		return "", &types.TokenRefreshError{AccountId: account.Id, Reason: "no refresh token on record"}
	}

	creds, err := m.google.Refresh(ctx, account.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Uint("account_id", account.Id).Msg("token refresh failed")
		return "", &types.TokenRefreshError{AccountId: account.Id, Reason: err.Error()}
	}

	if err := m.store.UpdateAccountCredentials(ctx, account.Id, creds); err != nil {
		return "", fmt.Errorf("persist refreshed credentials: %w", err)
	}

	account.AccessToken = creds.AccessToken
	account.AccessTokenExpiresAt = creds.ExpiresAt

	return creds.AccessToken, nil
}
