package apiv1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/types"
)

func newDispatchContext(t *testing.T, body string, user *types.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gmail", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != nil {
		ctx := auth.WithAuthInfo(req.Context(), &types.AuthInfo{User: user})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDispatch_RequiresAuth(t *testing.T) {
	group := &GmailGroup{}
	c, rec := newDispatchContext(t, `{"action":"import"}`, nil)

	err := auth.WithAuth(group.Dispatch)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDispatch_ActionRequired(t *testing.T) {
	group := &GmailGroup{}
	c, rec := newDispatchContext(t, `{}`, &types.User{Id: 1})

	err := group.Dispatch(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "action is required", resp.Error)
}

func TestDispatch_MalformedBody(t *testing.T) {
	group := &GmailGroup{}
	c, rec := newDispatchContext(t, `{"action":`, &types.User{Id: 1})

	err := group.Dispatch(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionImport_DefaultsMailboxToInbox(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		json.NewEncoder(w).Encode(gmail.MessageList{})
	}))
	defer server.Close()

	group := &GmailGroup{gmailClient: gmail.NewClientWithBaseURL(server.URL)}
	c, rec := newDispatchContext(t, "{}", &types.User{Id: 1})

	// An omitted mailbox means inbox, not a validation error.
	req := &ActionRequest{Action: "import"}
	err := group.actionImport(c, &types.User{Id: 1}, &types.Account{Id: 2}, "tok", req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, gotPath, "labelIds=INBOX")

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestActionImport_RejectsUnknownMailbox(t *testing.T) {
	group := &GmailGroup{}
	c, rec := newDispatchContext(t, "{}", &types.User{Id: 1})

	req := &ActionRequest{Action: "import", Mailbox: "spam"}
	err := group.actionImport(c, &types.User{Id: 1}, &types.Account{Id: 2}, "tok", req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
