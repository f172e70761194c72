package apiv1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/types"
)

func newOAuthGroup(configured bool) *OAuthGroup {
	cfg := types.GoogleOAuthConfig{}
	if configured {
		cfg = types.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:1994/api/v1/oauth/gmail/callback",
		}
	}
	return &OAuthGroup{
		google: oauth.NewGoogleClient(cfg),
		signer: oauth.NewStateSigner("test-secret", time.Minute),
	}
}

func newConnectContext(t *testing.T, body string, user *types.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/oauth/gmail", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != nil {
		ctx := auth.WithAuthInfo(req.Context(), &types.AuthInfo{User: user})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestConnect_NotConfigured(t *testing.T) {
	og := newOAuthGroup(false)
	c, rec := newConnectContext(t, `{}`, &types.User{Id: 1})

	assert.NoError(t, og.Connect(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Google OAuth is not configured", resp.Error)
}

func TestConnect_RejectsOpaqueRedirect(t *testing.T) {
	og := newOAuthGroup(true)
	c, rec := newConnectContext(t, `{"redirect_url":"javascript:alert(1)"}`, &types.User{Id: 1})

	assert.NoError(t, og.Connect(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnect_ReturnsAuthURL(t *testing.T) {
	og := newOAuthGroup(true)
	c, rec := newConnectContext(t, `{"redirect_url":"/mail"}`, &types.User{Id: 1})

	assert.NoError(t, og.Connect(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	assert.True(t, ok)
	authURL, _ := data["authUrl"].(string)
	assert.Contains(t, authURL, "accounts.google.com")
	assert.Contains(t, authURL, "access_type=offline")
	assert.Contains(t, authURL, "state=")
}

func TestCallback_TamperedStateNeverExchanges(t *testing.T) {
	og := newOAuthGroup(true)

	state, err := og.signer.Sign(1, "/mail")
	assert.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/gmail/callback?code=abc&state="+state+"x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// backend and queue are nil; reaching the exchange would panic
	assert.NoError(t, og.Callback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Invalid state signature", resp.Error)
}

func TestCallback_MissingCode(t *testing.T) {
	og := newOAuthGroup(true)

	state, err := og.signer.Sign(1, "/mail")
	assert.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/gmail/callback?state="+state, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, og.Callback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "Missing authorization code", resp.Error)
}
