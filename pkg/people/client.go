package people

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/breeze-mail/breeze/pkg/types"
)

const APIBase = "https://people.googleapis.com/v1"

const connectionFields = "names,emailAddresses,phoneNumbers,organizations,photos"

// Connection is a People API person, trimmed to the fields we mirror.
type Connection struct {
	ResourceName string `json:"resourceName"`
	Names        []struct {
		DisplayName string `json:"displayName"`
	} `json:"names,omitempty"`
	EmailAddresses []struct {
		Value string `json:"value"`
	} `json:"emailAddresses,omitempty"`
	PhoneNumbers []struct {
		Value string `json:"value"`
	} `json:"phoneNumbers,omitempty"`
	Organizations []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	} `json:"organizations,omitempty"`
	Photos []struct {
		Url string `json:"url"`
	} `json:"photos,omitempty"`
}

type connectionList struct {
	Connections   []Connection `json:"connections,omitempty"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
	TotalItems    int          `json:"totalItems,omitempty"`
}

// Client lists a user's contacts from the Google People API.
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

func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

// ListConnections pages through the user's contacts up to maxContacts
// and returns only entries that carry at least one email address.
func (c *Client) ListConnections(ctx context.Context, token string, maxContacts int) ([]Connection, error) {
	var out []Connection
	pageToken := ""

	for len(out) < maxContacts {
		pageSize := maxContacts - len(out)
		if pageSize > 200 {
			pageSize = 200
		}

		path := fmt.Sprintf("/people/me/connections?personFields=%s&pageSize=%d",
			url.QueryEscape(connectionFields), pageSize)
		if pageToken != "" {
			path += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page connectionList
		if err := c.get(ctx, token, path, &page); err != nil {
			return nil, err
		}

		for _, conn := range page.Connections {
			if len(conn.EmailAddresses) == 0 {
				continue
			}
			out = append(out, conn)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(out) > maxContacts {
		out = out[:maxContacts]
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, token, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &types.UpstreamError{
			Service:    "people",
			StatusCode: resp.StatusCode,
			Detail:     string(detail),
		}
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
