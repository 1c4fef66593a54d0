package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/washandgo/engagement-api/internal/config"
	"github.com/washandgo/engagement-api/internal/domain"
)

const maxResponseBody = 10 << 20 // 10 MiB

// UpstreamError is the typed failure result for a remote call. It keeps
// the HTTP status (0 for transport-level failures such as timeouts) and
// a human-readable message; callers branch on the status, never on
// message text.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote call failed: %s", e.Message)
	}
	return fmt.Sprintf("remote call failed with status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the remote answered 404 for the record.
func (e *UpstreamError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client talks to the upstream ERP engagement API. Every call carries a
// bounded timeout; a nil client (remote disabled) fails fast with a
// typed error instead of panicking.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *zap.Logger
}

// NewClient creates a client for the upstream backend. Returns nil when
// the remote connection is disabled or not configured.
func NewClient(cfg *config.RemoteConfig, logger *zap.Logger) *Client {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Remote backend disabled, running on local store only")
		return nil
	}
	if cfg.BaseURL == "" {
		logger.Warn("Remote backend enabled but baseURL is empty, skipping")
		return nil
	}

	timeout := cfg.RequestTimeoutDuration()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	logger.Info("Remote backend client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("request_timeout", timeout),
		zap.Int("max_retries", retries),
	)

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: retries,
		logger:     logger,
	}
}

// IsEnabled reports whether the client is configured for outbound calls.
func (c *Client) IsEnabled() bool {
	return c != nil && c.httpClient != nil
}

// ListEngagements fetches the remote engagement snapshot. The wire shape
// tolerates both camelCase and snake_case field spellings; records are
// normalized into the internal shape before being returned.
func (c *Client) ListEngagements(ctx context.Context) ([]domain.Engagement, error) {
	body, err := c.do(ctx, http.MethodGet, "/engagements", nil)
	if err != nil {
		return nil, err
	}

	var wires []domain.EngagementWire
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("malformed engagement list: %v", err)}
	}

	engagements := make([]domain.Engagement, 0, len(wires))
	for i := range wires {
		engagements = append(engagements, wires[i].Normalize())
	}
	return engagements, nil
}

// CreateEngagement persists a locally created engagement upstream and
// returns the stored copy, which may carry remote-assigned fields.
func (c *Client) CreateEngagement(ctx context.Context, e *domain.Engagement) (*domain.Engagement, error) {
	payload, err := json.Marshal(e.ToWire())
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("encode engagement: %v", err)}
	}

	body, err := c.do(ctx, http.MethodPost, "/engagements", payload)
	if err != nil {
		return nil, err
	}
	return decodeEngagement(body)
}

// UpdateEngagement pushes the current state of an engagement upstream.
// A 404 means the remote has never seen this id, which happens when an
// optimistically created record races its first persistence; the update
// is then retried as a create instead of surfacing a hard failure.
func (c *Client) UpdateEngagement(ctx context.Context, e *domain.Engagement) (*domain.Engagement, error) {
	payload, err := json.Marshal(e.ToWire())
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("encode engagement: %v", err)}
	}

	body, err := c.do(ctx, http.MethodPut, "/engagements/"+e.ID, payload)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.IsNotFound() {
			c.logger.Info("Remote has no record for update, retrying as create",
				zap.String("engagement_id", e.ID),
			)
			return c.CreateEngagement(ctx, e)
		}
		return nil, err
	}
	return decodeEngagement(body)
}

// DeleteEngagement removes an engagement upstream. A 404 is treated as
// success since the desired end state already holds.
func (c *Client) DeleteEngagement(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/engagements/"+id, nil)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.IsNotFound() {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if !c.IsEnabled() {
		return nil, &UpstreamError{Message: "remote backend not configured"}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &UpstreamError{Message: ctx.Err().Error()}
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, err := c.doOnce(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var upstream *UpstreamError
		if errors.As(err, &upstream) && !retryable(upstream) {
			return nil, err
		}
		c.logger.Warn("Remote call failed, will retry",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("read response: %v", err)}
	}

	c.logger.Debug("Remote call completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body, resp.StatusCode),
		}
	}
	return body, nil
}

func decodeEngagement(body []byte) (*domain.Engagement, error) {
	var wire domain.EngagementWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &UpstreamError{Message: fmt.Sprintf("malformed engagement: %v", err)}
	}
	e := wire.Normalize()
	return &e, nil
}

// upstreamMessage extracts a readable message from an error body,
// falling back to the status text.
func upstreamMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, m := range []string{parsed.Message, parsed.Detail, parsed.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}

func retryable(e *UpstreamError) bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode >= 500
}
