package types

import "time"

// User is an authenticated owner of mirrored mailbox data. All mirror rows
// are scoped by the user's internal id.
type User struct {
	Id         uint      `json:"id"`
	ExternalId string    `json:"external_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Account is a connected mail provider account (one per user+provider).
// The refresh token is the long-lived credential; the access token is
// ephemeral and rewritten on nearly every gateway action.
type Account struct {
	Id                   uint       `json:"id"`
	ExternalId           string     `json:"external_id"`
	UserId               uint       `json:"user_id"`
	Provider             string     `json:"provider"`
	EmailAddress         string     `json:"email_address"`
	RefreshToken         string     `json:"-"`
	AccessToken          string     `json:"-"`
	AccessTokenExpiresAt *time.Time `json:"access_token_expires_at,omitempty"`
	Scope                string     `json:"scope"`
	TokenType            string     `json:"token_type"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

const ProviderGmail = "gmail"

// Credentials is the result of an OAuth exchange or refresh.
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
}

// Token is a bearer API token for a user, stored bcrypt-hashed.
type Token struct {
	Id         uint       `json:"id"`
	ExternalId string     `json:"external_id"`
	UserId     uint       `json:"user_id"`
	TokenHash  string     `json:"-"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
