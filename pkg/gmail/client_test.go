package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/breeze-mail/breeze/pkg/types"
)

func TestClient_UpstreamErrorDetailCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.GetMessage(context.Background(), "token", "m1", FormatFull)

	var upstreamErr *types.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Service != "gmail" {
		t.Errorf("expected service 'gmail', got '%s'", upstreamErr.Service)
	}
	if upstreamErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", upstreamErr.StatusCode)
	}
	if len(upstreamErr.Detail) != 2048 {
		t.Errorf("expected detail capped at 2048 bytes, got %d", len(upstreamErr.Detail))
	}
}

func TestClient_ListMessagesQuery(t *testing.T) {
	var gotPath string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(MessageList{})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.ListMessages(context.Background(), "tok-123", "labelIds=INBOX", 25, "page-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/users/me/messages?maxResults=25&labelIds=INBOX&pageToken=page-2" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
}

func TestClient_ModifyMessageBody(t *testing.T) {
	var gotBody ModifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(Message{Id: "m1", LabelIds: []string{"INBOX"}})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	modified, err := client.ModifyMessage(context.Background(), "tok", "m1", []string{"STARRED"}, []string{"UNREAD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotBody.AddLabelIds) != 1 || gotBody.AddLabelIds[0] != "STARRED" {
		t.Errorf("unexpected addLabelIds: %v", gotBody.AddLabelIds)
	}
	if len(gotBody.RemoveLabelIds) != 1 || gotBody.RemoveLabelIds[0] != "UNREAD" {
		t.Errorf("unexpected removeLabelIds: %v", gotBody.RemoveLabelIds)
	}
	if len(modified.LabelIds) != 1 || modified.LabelIds[0] != "INBOX" {
		t.Errorf("expected authoritative label set from response, got %v", modified.LabelIds)
	}
}
