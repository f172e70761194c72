package apiv1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// TokensGroup mints and revokes the bearer tokens the rest of the API
// authenticates with. A fresh deployment bootstraps itself here: the
// admin token creates a user and a token in one call.
type TokensGroup struct {
	backend repository.BackendRepository
}

func NewTokensGroup(g *echo.Group, backend repository.BackendRepository) *TokensGroup {
	tg := &TokensGroup{backend: backend}

	g.POST("", auth.WithAdmin(tg.Create))
	g.GET("", auth.WithAdmin(tg.List))
	g.DELETE("/:external_id", auth.WithAdmin(tg.Revoke))

	return tg
}

type CreateTokenRequest struct {
	UserId    uint   `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// TokenResponse carries the raw token. It is shown exactly once; only
// the hash is stored.
type TokenResponse struct {
	Token string       `json:"token"`
	Info  *types.Token `json:"info"`
}

func (tg *TokensGroup) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateTokenRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}
	if req.UserId == 0 && req.Email == "" {
		return ErrorResponse(c, http.StatusBadRequest, "user_id or email required")
	}
	if req.Name == "" {
		req.Name = "API Token"
	}

	user, err := tg.resolveUser(ctx, req.UserId, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve token owner")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to resolve user")
	}

	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	token, raw, err := tg.backend.CreateToken(ctx, user.Id, req.Name, expiresAt)
	if err != nil {
		log.Error().Err(err).Msg("failed to create token")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to create token")
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    TokenResponse{Token: raw, Info: token},
	})
}

// resolveUser finds the token owner, creating the user on first use
// when only an email is given.
func (tg *TokensGroup) resolveUser(ctx context.Context, userId uint, email string) (*types.User, error) {
	if userId != 0 {
		return tg.backend.GetUser(ctx, userId)
	}
	if user, err := tg.backend.GetUserByEmail(ctx, email); err == nil {
		return user, nil
	}
	return tg.backend.CreateUser(ctx, email)
}

func (tg *TokensGroup) List(c echo.Context) error {
	userId, err := parseUserId(c.QueryParam("user_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "user_id is required")
	}

	tokens, err := tg.backend.ListTokens(c.Request().Context(), userId)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tokens")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to list tokens")
	}

	return SuccessResponse(c, map[string]any{"tokens": tokens})
}

func (tg *TokensGroup) Revoke(c echo.Context) error {
	userId, err := parseUserId(c.QueryParam("user_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "user_id is required")
	}

	if err := tg.backend.RevokeToken(c.Request().Context(), userId, c.Param("external_id")); err != nil {
		return ErrorResponse(c, http.StatusNotFound, "token not found")
	}

	return SuccessResponse(c, map[string]any{"revoked": true})
}
