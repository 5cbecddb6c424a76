package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/thrive/internal/domain/model"
)

// submitResult classifies the response to one submission.
type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultFailed
)

// Client talks to the scoring service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Health checks that /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	return nil
}

// Submit posts one check-in. Backpressure is retried until ctx ends.
func (c *Client) Submit(ctx context.Context, s Submission) (submitResult, error) {
	for {
		status, body, err := c.do(ctx, http.MethodPost, "/v1/checkins", s)
		if err != nil {
			return resultFailed, err
		}
		switch status {
		case http.StatusAccepted:
			return resultAccepted, nil
		case http.StatusOK:
			return resultDuplicate, nil
		case http.StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return resultFailed, ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
		default:
			return resultFailed, fmt.Errorf("submit %s: status %d: %s", s.ID, status, bytes.TrimSpace(body))
		}
	}
}

// Profile fetches a user profile. found is false on 404.
func (c *Client) Profile(ctx context.Context, userID string) (p model.Profile, found bool, err error) {
	status, body, err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(userID), nil)
	if err != nil {
		return model.Profile{}, false, err
	}
	switch status {
	case http.StatusOK:
		if err := json.Unmarshal(body, &p); err != nil {
			return model.Profile{}, false, fmt.Errorf("decode profile: %w", err)
		}
		return p, true, nil
	case http.StatusNotFound:
		return model.Profile{}, false, nil
	default:
		return model.Profile{}, false, fmt.Errorf("profile %s: status %d", userID, status)
	}
}
