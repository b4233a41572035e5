package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	usageEndpoint  = "https://api.anthropic.com/api/oauth/usage"
	anthropicBeta  = "oauth-2025-04-20"
	userAgent      = "claude-status/1.0"
	requestTimeout = 5 * time.Second
)

var (
	// ErrUnauthorized means the API rejected the bearer token. The caller
	// decides whether to reload credentials and retry; the client never
	// retries on its own.
	ErrUnauthorized = errors.New("usage api: unauthorized")
	// ErrTransport wraps network-level failures.
	ErrTransport = errors.New("usage api: request failed")
	// ErrBadResponse wraps unexpected status codes and undecodable bodies.
	ErrBadResponse = errors.New("usage api: bad response")
)

// UsageData holds the parsed API response.
type UsageData struct {
	FiveHour WindowData `json:"five_hour"`
	SevenDay WindowData `json:"seven_day"`
}

// WindowData holds utilization info for a single rate-limit window.
type WindowData struct {
	Utilization float64  `json:"utilization"` // 0-100 percentage
	ResetsAt    FlexTime `json:"resets_at"`
}

// FlexTime decodes a reset instant from either of the encodings the API
// has been observed to use: an ISO 8601 string or a Unix epoch integer.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t.Time = parsed.UTC()
		return nil
	}
	epoch, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("reset time is neither a timestamp string nor an epoch: %w", err)
	}
	t.Time = time.Unix(epoch, 0).UTC()
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Client talks to the Anthropic OAuth usage endpoint.
type Client struct {
	http     *http.Client
	endpoint string
}

func NewClient() *Client {
	return &Client{
		http:     &http.Client{Timeout: requestTimeout},
		endpoint: usageEndpoint,
	}
}

// FetchUsage retrieves the current five-hour and seven-day windows.
func (c *Client) FetchUsage(ctx context.Context, token string) (*UsageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", anthropicBeta)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var data UsageData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &data, nil
}
