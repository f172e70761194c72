package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/people"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// fakeBackend overrides the calls the orchestrator makes; anything else
// panics on use.
type fakeBackend struct {
	repository.BackendRepository

	account          *types.Account
	failedPhases     map[types.SyncType]string
	completedPhases  map[types.SyncType]bool
	upsertedContacts int
	upsertedMessages int
}

func newFakeBackend(account *types.Account) *fakeBackend {
	return &fakeBackend{
		account:         account,
		failedPhases:    map[types.SyncType]string{},
		completedPhases: map[types.SyncType]bool{},
	}
}

func (f *fakeBackend) GetAccount(ctx context.Context, userId, accountId uint) (*types.Account, error) {
	return f.account, nil
}

func (f *fakeBackend) FailSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, errorMessage string) error {
	f.failedPhases[syncType] = errorMessage
	return nil
}

func (f *fakeBackend) CompleteSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType) error {
	f.completedPhases[syncType] = true
	return nil
}

func (f *fakeBackend) StartSyncPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, totalItems int) (*types.SyncStatus, error) {
	return &types.SyncStatus{SyncType: syncType, TotalItems: totalItems}, nil
}

func (f *fakeBackend) UpdateSyncProgress(ctx context.Context, userId, accountId uint, syncType types.SyncType, syncedItems int) error {
	return nil
}

func (f *fakeBackend) UpsertContact(ctx context.Context, contact *types.Contact) (*types.Contact, error) {
	f.upsertedContacts++
	return contact, nil
}

func (f *fakeBackend) UpsertMessage(ctx context.Context, msg *types.EmailMessage) (*types.EmailMessage, error) {
	f.upsertedMessages++
	return msg, nil
}

func (f *fakeBackend) UpdateAccountCredentials(ctx context.Context, accountId uint, creds *types.Credentials) error {
	return nil
}

func TestRun_RefreshFailureFailsAllPhases(t *testing.T) {
	// An account with no refresh token cannot be refreshed; every phase
	// must land in a terminal failed state.
	backend := newFakeBackend(&types.Account{Id: 2, UserId: 1, Provider: types.ProviderGmail})

	google := oauth.NewGoogleClient(types.GoogleOAuthConfig{
		ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb",
	})
	orchestrator := NewOrchestrator(
		backend,
		oauth.NewTokenManager(google, backend),
		gmail.NewClient(),
		people.NewClient(),
		types.SyncConfig{},
	)

	err := orchestrator.Run(context.Background(), 1, 2)
	assert.Error(t, err)

	assert.Len(t, backend.failedPhases, 3)
	for _, syncType := range types.AllSyncTypes {
		assert.Equal(t, "token refresh failed", backend.failedPhases[syncType])
	}
}

func TestRun_LabelsFailureIsolated(t *testing.T) {
	// The labels listing 500s while contacts and messages work; only the
	// labels phase may land in a failed state.
	formatCh := make(chan string, 10)
	gmailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/me/labels"):
			http.Error(w, "backend unavailable", http.StatusInternalServerError)
		case r.URL.Path == "/users/me/messages":
			json.NewEncoder(w).Encode(gmail.MessageList{
				Messages: []gmail.MessageRef{{Id: "m1"}, {Id: "m2"}},
			})
		default:
			formatCh <- r.URL.Query().Get("format")
			json.NewEncoder(w).Encode(gmail.Message{Id: "m", LabelIds: []string{"INBOX"}})
		}
	}))
	defer gmailServer.Close()

	peopleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"connections":[{"resourceName":"people/c1","names":[{"displayName":"Jane"}],"emailAddresses":[{"value":"jane@example.com"}]}]}`))
	}))
	defer peopleServer.Close()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
	}))
	defer tokenServer.Close()

	backend := newFakeBackend(&types.Account{Id: 2, UserId: 1, Provider: types.ProviderGmail, RefreshToken: "refresh"})
	google := oauth.NewGoogleClientWithTokenURL(types.GoogleOAuthConfig{
		ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb",
	}, tokenServer.URL)

	orchestrator := NewOrchestrator(
		backend,
		oauth.NewTokenManager(google, backend),
		gmail.NewClientWithBaseURL(gmailServer.URL),
		people.NewClientWithBaseURL(peopleServer.URL),
		types.SyncConfig{},
	)

	err := orchestrator.Run(context.Background(), 1, 2)
	assert.NoError(t, err)

	assert.Contains(t, backend.failedPhases, types.SyncTypeLabels)
	assert.Contains(t, backend.failedPhases[types.SyncTypeLabels], "list labels")
	assert.True(t, backend.completedPhases[types.SyncTypeContacts])
	assert.True(t, backend.completedPhases[types.SyncTypeMessages])
	assert.Equal(t, 1, backend.upsertedContacts)
	assert.Equal(t, 2, backend.upsertedMessages)

	// Message sync fetches metadata only; bodies come later via the
	// lazy backfill.
	close(formatCh)
	fetched := 0
	for format := range formatCh {
		assert.Equal(t, gmail.FormatMetadata, format)
		fetched++
	}
	assert.Equal(t, 2, fetched)
}

func TestListMessageIds_PagesAndCaps(t *testing.T) {
	// Two pages of 100 with a token for a third; the cap of 150 stops
	// listing mid-stream.
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := gmail.MessageList{NextPageToken: "next"}
		for i := 0; i < 100; i++ {
			page.Messages = append(page.Messages, gmail.MessageRef{Id: "m"})
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	orchestrator := NewOrchestrator(nil, nil,
		gmail.NewClientWithBaseURL(server.URL), nil,
		types.SyncConfig{MaxMessages: 150})

	ids, err := orchestrator.listMessageIds(context.Background(), "token", "q=newer_than:3m")
	assert.NoError(t, err)
	assert.Len(t, ids, 150)
	assert.Equal(t, 2, requests)
}

func TestMessageToMirror(t *testing.T) {
	msg := &gmail.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		Snippet:      "Fares from Boston",
		LabelIds:     []string{"INBOX", "UNREAD"},
		InternalDate: "1700000000000",
		SizeEstimate: 2048,
		Payload: &gmail.Part{
			MimeType: "multipart/alternative",
			Headers: []gmail.Header{
				{Name: "Subject", Value: "Flight Deals"},
				{Name: "From", Value: "Kayak <deals@msg.kayak.com>"},
				{Name: "To", Value: `"Doe, Jane" <jane@example.com>, bob@example.com`},
			},
			Parts: []gmail.Part{
				{MimeType: "text/plain", Body: &gmail.PartBody{Data: "Zmlyc3Q"}},       // "first"
				{MimeType: "text/html", Body: &gmail.PartBody{Data: "PHA-b25lPC9wPg"}}, // "<p>one</p>"
			},
		},
	}

	row := MessageToMirror(1, 2, msg)

	assert.Equal(t, uint(1), row.UserId)
	assert.Equal(t, uint(2), row.AccountId)
	assert.Equal(t, "msg-1", row.GmailMessageId)
	assert.Equal(t, "Flight Deals", row.Subject)
	assert.Equal(t, "Kayak <deals@msg.kayak.com>", row.FromAddress)
	assert.Len(t, row.ToAddresses, 2)
	assert.Equal(t, "first", row.BodyText)
	assert.Equal(t, "<p>one</p>", row.BodyHtml)
	assert.False(t, row.IsRead, "UNREAD label means unread")
	assert.NotNil(t, row.InternalDate)
	assert.Equal(t, int64(2048), row.SizeEstimate)
}
