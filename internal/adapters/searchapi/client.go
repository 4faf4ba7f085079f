// Package searchapi implements ports.JobService against an asynchronous
// job-style HTTP API: submit a payload, get back a handle, poll the status
// endpoint until the job reaches a terminal state.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"searchandwait/internal/core/domain"
	"searchandwait/internal/telemetry"
)

const (
	defaultSubmitPath   = "/search/submit"
	defaultStatusPath   = "/search/status/{handle}"
	defaultHealthPath   = "/health"
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 20
	defaultTimeout      = 30 * time.Second

	// handlePlaceholder marks where the job handle goes in StatusPath.
	handlePlaceholder = "{handle}"

	// maxErrorBodyBytes bounds how much of an error response we capture
	// to avoid dragging huge payloads into error strings.
	maxErrorBodyBytes = 4 * 1024
)

// Config captures everything the client needs to drive the remote API.
type Config struct {
	BaseURL    string
	SubmitPath string
	StatusPath string // must contain "{handle}"
	HealthPath string

	PollInterval time.Duration // delay between status requests
	MaxAttempts  int           // total status requests before giving up
	Timeout      time.Duration // per-request bound, distinct from PollInterval

	// Headers are attached to every request. Auth tokens go here; the
	// client itself knows nothing about authentication.
	Headers map[string]string

	Client *http.Client
	Logger *slog.Logger
}

// Client drives one remote job API. It holds no per-job state, so a single
// instance may serve many concurrent poll loops.
type Client struct {
	baseURL    string
	submitPath string
	statusPath string
	healthPath string
	interval   time.Duration
	attempts   int
	headers    map[string]string
	client     *http.Client
	logger     *slog.Logger
}

// NewClient builds a client. Callers should pass a validated config; zero
// values fall back to defaults, except BaseURL which is required.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("searchapi: base URL is required")
	}

	statusPath := fallbackString(cfg.StatusPath, defaultStatusPath)
	if !strings.Contains(statusPath, handlePlaceholder) {
		return nil, fmt.Errorf("searchapi: status path %q has no %s placeholder", statusPath, handlePlaceholder)
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		submitPath: fallbackString(cfg.SubmitPath, defaultSubmitPath),
		statusPath: statusPath,
		healthPath: fallbackString(cfg.HealthPath, defaultHealthPath),
		interval:   interval,
		attempts:   attempts,
		headers:    cfg.Headers,
		client:     hc,
		logger:     logger,
	}, nil
}

// Health probes the liveness endpoint. Any transport error or non-2xx
// response means the service cannot usefully accept work.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &ServiceUnavailableError{Err: err}
	}
	defer drainAndClose(resp.Body)

	if !is2xx(resp.StatusCode) {
		return &ServiceUnavailableError{StatusCode: resp.StatusCode}
	}
	return nil
}

// submitResponse covers the handle field names the service has been seen
// to use.
type submitResponse struct {
	Handle string `json:"handle"`
	JobID  string `json:"job_id"`
	ID     string `json:"id"`
}

// Submit posts the payload and extracts the job handle. A transport error
// here aborts with no retry: the service may or may not have created a job,
// and resubmitting blindly could run the work twice.
func (c *Client) Submit(ctx context.Context, payload map[string]any) (domain.Handle, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+c.submitPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		telemetry.SubmitFailures.Inc()
		return "", fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		telemetry.SubmitFailures.Inc()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.SubmitFailures.Inc()
		return "", fmt.Errorf("read submit response: %w", err)
	}

	var sr submitResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		telemetry.SubmitFailures.Inc()
		return "", &MalformedResponseError{Raw: raw, Err: err}
	}

	handle := fallbackString(sr.Handle, fallbackString(sr.JobID, sr.ID))
	if handle == "" {
		telemetry.SubmitFailures.Inc()
		return "", &MissingHandleError{Raw: raw}
	}

	telemetry.Submissions.Inc()
	return domain.Handle(handle), nil
}

// statusResponse is the subset of the status body the poll loop inspects.
// The full raw body is what gets returned as the result.
type statusResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	ResultsURL string `json:"results_url"`

	raw []byte
}

// PollUntilTerminal issues up to MaxAttempts status requests for the
// handle, waiting PollInterval between them. Transport errors and
// unparseable bodies are soft failures: they consume an attempt and the
// loop moves on. A terminal status short-circuits immediately.
func (c *Client) PollUntilTerminal(ctx context.Context, handle domain.Handle) (*domain.JobOutcome, error) {
	statusURL := c.statusURL(handle)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.interval):
			}
		}

		telemetry.PollAttempts.Inc()
		st, err := c.pollOnce(ctx, statusURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			telemetry.PollSoftFailures.Inc()
			c.logger.Warn("poll attempt failed, continuing",
				"handle", handle, "attempt", attempt, "error", err)
			continue
		}

		switch domain.Status(st.Status) {
		case domain.StatusCompleted:
			telemetry.JobsCompleted.Inc()
			result := st.raw
			if st.ResultsURL != "" {
				result, err = c.fetchResults(ctx, st.ResultsURL)
				if err != nil {
					return nil, fmt.Errorf("fetch results for job %s: %w", handle, err)
				}
			}
			return &domain.JobOutcome{
				Status:   domain.StatusCompleted,
				Result:   result,
				Attempts: attempt,
			}, nil
		case domain.StatusFailed:
			telemetry.JobsFailed.Inc()
			return &domain.JobOutcome{
				Status:       domain.StatusFailed,
				ErrorMessage: st.Error,
				Attempts:     attempt,
			}, nil
		}

		c.logger.Debug("job not terminal yet",
			"handle", handle, "attempt", attempt, "status", st.Status)
	}

	telemetry.PollTimeouts.Inc()
	return nil, &PollTimeoutError{Handle: string(handle), Attempts: c.attempts}
}

func (c *Client) pollOnce(ctx context.Context, statusURL string) (*statusResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, errBody)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	var st statusResponse
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	st.raw = raw
	return &st, nil
}

// fetchResults follows a results_url from a completed status response. The
// bytes come back untouched.
func (c *Client) fetchResults(ctx context.Context, resultsURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, resultsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("results fetch: status %d, body: %s", resp.StatusCode, errBody)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) statusURL(handle domain.Handle) string {
	path := strings.ReplaceAll(c.statusPath, handlePlaceholder, url.PathEscape(string(handle)))
	return c.baseURL + path
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}

func fallbackString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodyBytes))
	_ = body.Close()
}
