package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	APIBase = "https://gmail.googleapis.com/gmail/v1"

	FormatFull     = "full"
	FormatMetadata = "metadata"
	FormatMinimal  = "minimal"
)

// MailboxQueries maps gateway mailbox names to list query strings.
var MailboxQueries = map[string]string{
	"inbox":  "labelIds=INBOX",
	"sent":   "labelIds=SENT",
	"drafts": "labelIds=DRAFT",
}

// API call counter for metrics
var apiCallCount int64

// APICallCount returns the current API call count
func APICallCount() int64 {
	return atomic.LoadInt64(&apiCallCount)
}

// ResetAPICallCount resets the API call counter
func ResetAPICallCount() {
	atomic.StoreInt64(&apiCallCount, 0)
}

// Client is a thin HTTP client over the Gmail REST API. Access tokens
// are passed per call; the client itself holds no credentials.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    APIBase,
	}
}

// NewClientWithBaseURL points the client at an alternate endpoint, used
// by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

// Request makes a Gmail API call. A nil body sends no payload; results
// decode into result when non-nil.
func (c *Client) Request(ctx context.Context, method, token, path string, body, result any) error {
	count := atomic.AddInt64(&apiCallCount, 1)
	log.Debug().Int64("api_calls", count).Str("method", method).Str("path", path).Msg("gmail API call")

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &types.UpstreamError{
			Service:    "gmail",
			StatusCode: resp.StatusCode,
			Detail:     string(detail),
		}
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// ListMessages lists message refs matching the query. query is either a
// raw "labelIds=X" / "q=..." fragment or empty.
func (c *Client) ListMessages(ctx context.Context, token, query string, maxResults int, pageToken string) (*MessageList, error) {
	path := fmt.Sprintf("/users/me/messages?maxResults=%d", maxResults)
	if query != "" {
		path += "&" + query
	}
	if pageToken != "" {
		path += "&pageToken=" + url.QueryEscape(pageToken)
	}

	var result MessageList
	if err := c.Request(ctx, http.MethodGet, token, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMessage fetches a single message in the given format.
func (c *Client) GetMessage(ctx context.Context, token, messageId, format string) (*Message, error) {
	path := fmt.Sprintf("/users/me/messages/%s?format=%s", url.PathEscape(messageId), format)
	var result Message
	if err := c.Request(ctx, http.MethodGet, token, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ModifyMessage adds and removes labels. The returned message carries
// the authoritative post-modify label set.
func (c *Client) ModifyMessage(ctx context.Context, token, messageId string, add, remove []string) (*Message, error) {
	path := fmt.Sprintf("/users/me/messages/%s/modify", url.PathEscape(messageId))
	body := ModifyRequest{AddLabelIds: add, RemoveLabelIds: remove}

	var result Message
	if err := c.Request(ctx, http.MethodPost, token, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Send submits a raw RFC 2822 message (base64url, no padding).
func (c *Client) Send(ctx context.Context, token, raw string) (*Message, error) {
	body := map[string]string{"raw": raw}

	var result Message
	if err := c.Request(ctx, http.MethodPost, token, "/users/me/messages/send", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateDraft creates a draft from a raw message.
func (c *Client) CreateDraft(ctx context.Context, token, raw string) (*Draft, error) {
	body := map[string]any{"message": map[string]string{"raw": raw}}

	var result Draft
	if err := c.Request(ctx, http.MethodPost, token, "/users/me/drafts", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateDraft replaces the content of an existing draft.
func (c *Client) UpdateDraft(ctx context.Context, token, draftId, raw string) (*Draft, error) {
	path := fmt.Sprintf("/users/me/drafts/%s", url.PathEscape(draftId))
	body := map[string]any{"message": map[string]string{"raw": raw}}

	var result Draft
	if err := c.Request(ctx, http.MethodPut, token, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListLabels returns all labels, names and ids only.
func (c *Client) ListLabels(ctx context.Context, token string) ([]Label, error) {
	var result LabelList
	if err := c.Request(ctx, http.MethodGet, token, "/users/me/labels", nil, &result); err != nil {
		return nil, err
	}
	return result.Labels, nil
}

// GetLabel fetches one label with its message and thread counters.
func (c *Client) GetLabel(ctx context.Context, token, labelId string) (*Label, error) {
	path := fmt.Sprintf("/users/me/labels/%s", url.PathEscape(labelId))
	var result Label
	if err := c.Request(ctx, http.MethodGet, token, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateLabel creates a user label visible in both list views.
func (c *Client) CreateLabel(ctx context.Context, token, name string) (*Label, error) {
	body := map[string]string{
		"name":                  name,
		"labelListVisibility":   "labelShow",
		"messageListVisibility": "show",
	}

	var result Label
	if err := c.Request(ctx, http.MethodPost, token, "/users/me/labels", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
