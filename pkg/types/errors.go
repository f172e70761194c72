package types

import (
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned when a connected account is not found
type ErrAccountNotFound struct {
	AccountId uint
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account not found: %d", e.AccountId)
}

// From checks if the given error is an ErrAccountNotFound
func (e *ErrAccountNotFound) From(err error) bool {
	var accountNotFound *ErrAccountNotFound
	return errors.As(err, &accountNotFound)
}

// ErrMessageNotFound is returned when a mirrored message is not found
type ErrMessageNotFound struct {
	GmailMessageId string
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("message not found: %s", e.GmailMessageId)
}

func (e *ErrMessageNotFound) From(err error) bool {
	var messageNotFound *ErrMessageNotFound
	return errors.As(err, &messageNotFound)
}

// ErrFilterNotFound is returned when a filter is not found
type ErrFilterNotFound struct {
	ExternalId string
}

func (e *ErrFilterNotFound) Error() string {
	return fmt.Sprintf("filter not found: %s", e.ExternalId)
}

func (e *ErrFilterNotFound) From(err error) bool {
	var filterNotFound *ErrFilterNotFound
	return errors.As(err, &filterNotFound)
}

// TokenRefreshError indicates the stored refresh token no longer works
// and the user must reconnect the account.
type TokenRefreshError struct {
	AccountId uint
	Reason    string
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed for account %d: %s", e.AccountId, e.Reason)
}

func (e *TokenRefreshError) From(err error) bool {
	var refreshErr *TokenRefreshError
	return errors.As(err, &refreshErr)
}

// UpstreamError wraps a non-2xx response from an external API. Detail is
// truncated upstream body text, logged but never returned to clients.
type UpstreamError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed with status %d", e.Service, e.StatusCode)
}

func (e *UpstreamError) From(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}

// ValidationError is a client-facing request validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) From(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
