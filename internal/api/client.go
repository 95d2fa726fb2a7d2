// Package api provides the HTTP client for the gateway analytics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// Endpoint paths.
const (
	PeriodPath  = "/api/analytics/period"
	SummaryPath = "/api/analytics/summary"
	RatePath    = "/api/analytics/summary/rate"
	TopUserPath = "/api/analytics/top5_user_quota"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

var (
	// ErrUnexpectedStatus is returned for any non-200 HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMissingBaseURL is returned by New when no base URL is given.
	ErrMissingBaseURL = errors.New("base URL is required")
)

// Error is an application-level failure reported by the gateway with
// success=false. Message is the server-supplied text.
type Error struct {
	Endpoint string
	Message  string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request failed", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// AsError reports whether err carries a gateway application error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// envelope is the response wrapper shared by every analytics endpoint.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// Options configures a Client.
type Options struct {
	// Transport overrides the HTTP transport, mainly for tests.
	Transport   http.RoundTripper
	BaseURL     string
	AccessToken string
	UserAgent   string
	Timeout     time.Duration
}

// Client talks to the analytics endpoints of one gateway.
type Client struct {
	http    *resty.Client
	baseURL string
}

// New creates a client for the gateway at opts.BaseURL.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cli := resty.New()
	cli.SetBaseURL(baseURL)
	cli.SetTimeout(timeout)
	cli.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		cli.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.AccessToken != "" {
		cli.SetAuthToken(opts.AccessToken)
	}
	if opts.Transport != nil {
		cli.SetTransport(opts.Transport)
	}

	return &Client{http: cli, baseURL: baseURL}, nil
}

// BaseURL returns the gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetPeriodStatistics fetches channel, user, redemption and order statistics
// for the days between start and end. It returns nil when the gateway sends
// no data.
func (c *Client) GetPeriodStatistics(ctx context.Context, start, end time.Time, group models.GroupType, userID int) (*models.PeriodStatistics, error) {
	params := map[string]string{
		"start_timestamp": unix(start),
		"end_timestamp":   unix(end),
		"group_type":      string(group),
		"user_id":         strconv.Itoa(userID),
	}

	var out *models.PeriodStatistics
	if err := c.get(ctx, PeriodPath, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSummary fetches the per-day summary rows between start and end.
func (c *Client) GetSummary(ctx context.Context, userID int, start, end time.Time) ([]models.SummaryStatistic, error) {
	params := map[string]string{
		"user_id": strconv.Itoa(userID),
		"start":   unix(start),
		"end":     unix(end),
	}

	var out []models.SummaryStatistic
	if err := c.get(ctx, SummaryPath, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRate fetches the live rate snapshot. A zero userID asks for the whole
// gateway.
func (c *Client) GetRate(ctx context.Context, userID int) (*models.RateSnapshot, error) {
	params := map[string]string{"user_id": strconv.Itoa(userID)}

	var out *models.RateSnapshot
	if err := c.get(ctx, RatePath, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTopUserQuota fetches per-day consumption of the top spending users.
func (c *Client) GetTopUserQuota(ctx context.Context, start, end time.Time) ([]models.TopUserQuota, error) {
	params := map[string]string{
		"start_timestamp": unix(start),
		"end_timestamp":   unix(end),
	}

	var out []models.TopUserQuota
	if err := c.get(ctx, TopUserPath, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// get issues a GET request and decodes the envelope's data into out. out is
// left untouched when data is absent or null.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}

	logger.Debug("analytics request", "path", path, "status", resp.StatusCode(), "duration", time.Since(started))

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode(), path, truncate(resp.String(), 200))
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	if !env.Success {
		return &Error{Endpoint: path, Message: env.Message}
	}

	data := strings.TrimSpace(string(env.Data))
	if data == "" || data == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", path, err)
	}
	return nil
}

func unix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
