package auth

import (
	"context"

	"github.com/breeze-mail/breeze/pkg/types"
)

// TokenAuthorizer is implemented by repositories that can authorize tokens.
type TokenAuthorizer interface {
	AuthorizeToken(ctx context.Context, rawToken string) (*types.AuthInfo, error)
}

// CompositeValidator checks the static admin token first, then database tokens.
type CompositeValidator struct {
	adminToken string
	authorizer TokenAuthorizer
}

func NewCompositeValidator(adminToken string, authorizer TokenAuthorizer) *CompositeValidator {
	return &CompositeValidator{adminToken: adminToken, authorizer: authorizer}
}

func (v *CompositeValidator) ValidateAdminToken(token string) bool {
	return v.adminToken != "" && token == v.adminToken
}

func (v *CompositeValidator) ValidateToken(ctx context.Context, token string) (*types.AuthInfo, error) {
	if v.authorizer == nil {
		return nil, nil
	}
	return v.authorizer.AuthorizeToken(ctx, token)
}
