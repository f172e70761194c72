package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// EmailInput is the message content handed to the classifier.
type EmailInput struct {
	From    string
	Subject string
	Body    string
}

// Classifier decides whether an email matches a natural-language rule.
type Classifier interface {
	Matches(ctx context.Context, prompt string, email EmailInput) (bool, error)
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg types.OpenAIConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You classify emails against a user rule. " +
	"Answer with exactly YES or NO."

// Matches asks the model whether the email satisfies the rule prompt.
// Body text is truncated; the classifier needs the gist, not the whole
// newsletter.
func (c *Client) Matches(ctx context.Context, prompt string, email EmailInput) (bool, error) {
	body := email.Body
	if len(body) > 4000 {
		body = body[:4000]
	}

	userContent := fmt.Sprintf("Rule: %s\n\nFrom: %s\nSubject: %s\n\n%s",
		prompt, email.From, email.Subject, body)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		Temperature: 0,
		MaxTokens:   4,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return false, &types.UpstreamError{
			Service:    "openai",
			StatusCode: resp.StatusCode,
			Detail:     string(detail),
		}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("parse response: %w", err)
	}
	if len(result.Choices) == 0 {
		return false, fmt.Errorf("empty completion")
	}

	answer := strings.ToUpper(strings.TrimSpace(result.Choices[0].Message.Content))
	return strings.HasPrefix(answer, "YES"), nil
}
