package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client verifies accounts against a humanity-verification HTTP API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient creates a verification client. An empty baseURL disables the
// client; callers should fall back to a static verifier.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HTTPError is a non-2xx response from the verification API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("identity http %d", e.StatusCode)
	}
	return fmt.Sprintf("identity http %d: %s", e.StatusCode, b)
}

type verifyResponse struct {
	Account string `json:"account"`
	Human   bool   `json:"human"`
}

// IsHuman queries GET /verify?account=... and returns the API's verdict.
func (c *Client) IsHuman(ctx context.Context, account string) (bool, error) {
	if strings.TrimSpace(account) == "" {
		return false, fmt.Errorf("account is required")
	}

	q := url.Values{}
	q.Set("account", account)

	u := c.BaseURL + "/verify?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return false, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to decode verify response: %w", err)
	}
	return out.Human, nil
}
