package auth

import (
	"context"
	"errors"

	"github.com/breeze-mail/breeze/pkg/types"
)

type ctxKey int

const authInfoKey ctxKey = iota

var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrAdminRequired = errors.New("admin access required")
)

// --- Context get/set ---

func WithAuthInfo(ctx context.Context, info *types.AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey, info)
}

func AuthInfoFromContext(ctx context.Context) *types.AuthInfo {
	info, _ := ctx.Value(authInfoKey).(*types.AuthInfo)
	return info
}

// --- Authorization checks ---

func RequireAuth(ctx context.Context) error {
	if i := AuthInfoFromContext(ctx); i == nil || i.User == nil {
		return ErrAuthRequired
	}
	return nil
}

func RequireAdmin(ctx context.Context) error {
	if i := AuthInfoFromContext(ctx); i == nil || !i.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *types.User {
	if i := AuthInfoFromContext(ctx); i != nil {
		return i.User
	}
	return nil
}
