package apiv1

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	errMsgProviderConfig = "Google OAuth is not configured"
	errMsgInvalidState   = "Invalid state signature"
	errMsgNoAuthCode     = "Missing authorization code"
	errMsgTokenExchange  = "Token exchange failed"
)

// OAuthGroup handles the Gmail connect flow.
type OAuthGroup struct {
	google  *oauth.GoogleClient
	signer  *oauth.StateSigner
	backend repository.BackendRepository
	queue   repository.SyncJobQueue
}

// NewOAuthGroup creates and registers OAuth routes.
func NewOAuthGroup(g *echo.Group, google *oauth.GoogleClient, signer *oauth.StateSigner, backend repository.BackendRepository, queue repository.SyncJobQueue) *OAuthGroup {
	og := &OAuthGroup{
		google:  google,
		signer:  signer,
		backend: backend,
		queue:   queue,
	}

	g.POST("/gmail", auth.WithAuth(og.Connect))
	g.GET("/gmail/callback", og.Callback)

	return og
}

type ConnectRequest struct {
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Connect mints a signed state token and returns the Google consent URL.
func (og *OAuthGroup) Connect(c echo.Context) error {
	user := auth.UserFromContext(c.Request().Context())

	if !og.google.IsConfigured() {
		return ErrorResponse(c, http.StatusBadRequest, errMsgProviderConfig)
	}

	var req ConnectRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}

	if req.RedirectURL != "" &&
		!strings.HasPrefix(req.RedirectURL, "/") &&
		!strings.HasPrefix(req.RedirectURL, "http://") &&
		!strings.HasPrefix(req.RedirectURL, "https://") {
		return ErrorResponse(c, http.StatusBadRequest, "redirect_url must be a relative path or full URL")
	}

	state, err := og.signer.Sign(user.Id, req.RedirectURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign oauth state")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to start connect flow")
	}

	log.Info().Uint("user_id", user.Id).Msg("gmail connect started")

	return SuccessResponse(c, map[string]string{
		"authUrl": og.google.AuthorizeURL(state),
	})
}

// Callback verifies the state signature before anything else; a
// tampered state never reaches the token exchange.
func (og *OAuthGroup) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	claims, err := og.signer.Verify(c.QueryParam("state"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, errMsgInvalidState)
	}

	code := c.QueryParam("code")
	if code == "" {
		return ErrorResponse(c, http.StatusBadRequest, errMsgNoAuthCode)
	}

	creds, err := og.google.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("oauth exchange failed")
		return ErrorResponse(c, http.StatusBadRequest, errMsgTokenExchange)
	}

	email, err := og.google.UserEmail(ctx, creds.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve account email")
		return ErrorResponse(c, http.StatusBadRequest, errMsgTokenExchange)
	}

	account, err := og.backend.UpsertAccount(ctx, claims.UserId, types.ProviderGmail, email, creds)
	if err != nil {
		log.Error().Err(err).Msg("failed to save account")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to save connection")
	}

	// Kick off the initial directory sync.
	if _, err := og.backend.CreateSyncStatuses(ctx, claims.UserId, account.Id); err != nil {
		log.Error().Err(err).Msg("failed to create sync statuses")
	} else if err := og.queue.Push(ctx, &types.SyncJob{
		UserId:    claims.UserId,
		AccountId: account.Id,
	}); err != nil {
		log.Error().Err(err).Msg("failed to enqueue sync job")
	}

	log.Info().
		Uint("user_id", claims.UserId).
		Uint("account_id", account.Id).
		Str("email", email).
		Msg("gmail account connected")

	redirectURL := claims.RedirectURL
	if redirectURL == "" {
		redirectURL = "/"
	}
	return c.Redirect(http.StatusFound, appendQueryParam(redirectURL, "gmail", "connected"))
}

func appendQueryParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
