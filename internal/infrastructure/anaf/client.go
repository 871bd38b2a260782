// Package anaf talks to the ANAF e-Factura REST API (SPV): UBL generation, upload and status checks.
package anaf

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/documentiulia/backend/internal/infrastructure/config"
	"github.com/documentiulia/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries     = 3
	defaultBaseDelay      = 2 * time.Second
	defaultRequestTimeout = 30 * time.Second
	maxResponseSize       = 1 << 20

	UploadResultSuccess  = "success"
	UploadResultRejected = "rejected"
	UploadResultError    = "error"
)

var (
	// ErrUploadRejected means ANAF refused the document itself; retrying the same XML is pointless.
	ErrUploadRejected = errors.New("anaf: upload rejected")
	// ErrUnavailable means all attempts failed on transport or server errors.
	ErrUnavailable = errors.New("anaf: service unavailable")
)

// APIError is a non-2xx answer from ANAF.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anaf: HTTP %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	UploadIndex string
	Attempts    int
}

// StatusResult is the answer of stareMesaj for one upload index.
type StatusResult struct {
	State      string
	DownloadID string
	Message    string
}

// UploadObserver receives upload outcomes, typically the Prometheus metrics.
type UploadObserver interface {
	ObserveUpload(result string, elapsed time.Duration)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithObserver(o UploadObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithSleep replaces the backoff wait, used by tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	observer   UploadObserver
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

func NewClient(cfg config.EFacturaConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		env := cfg.Environment
		if env != "prod" {
			env = "test"
		}
		baseURL = "https://api.anaf.ro/" + env + "/FCTEL/rest"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:    baseURL,
		token:      cfg.OAuthToken,
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: retries,
		baseDelay:  delay,
		sleep:      sleepContext,
		logger:     logger.Named("anaf"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backoff is the wait after a failed attempt: base * 2^(attempt-1).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

type anafError struct {
	Message string `json:"errorMessage" xml:"errorMessage,attr"`
}

type uploadResponse struct {
	ExecutionStatus int         `json:"ExecutionStatus" xml:"ExecutionStatus,attr"`
	UploadIndex     string      `json:"index_incarcare" xml:"index_incarcare,attr"`
	Errors          []anafError `json:"Errors" xml:"Errors"`
}

type statusResponse struct {
	State      string      `json:"stare" xml:"stare,attr"`
	DownloadID string      `json:"id_descarcare" xml:"id_descarcare,attr"`
	Errors     []anafError `json:"Errors" xml:"Errors"`
}

// Upload sends a UBL document for the given supplier CUI, retrying transport and server failures.
func (c *Client) Upload(ctx context.Context, cui string, document []byte) (*UploadResult, error) {
	ctx, span := telemetry.StartClientSpan(ctx, "anaf.upload", attribute.String("anaf.cif", cui))
	start := time.Now()

	result, err := c.upload(ctx, cui, document)
	switch {
	case err == nil:
		c.observe(UploadResultSuccess, start)
	case errors.Is(err, ErrUploadRejected):
		c.observe(UploadResultRejected, start)
	default:
		c.observe(UploadResultError, start)
	}
	telemetry.EndSpan(span, err)
	return result, err
}

func (c *Client) upload(ctx context.Context, cui string, document []byte) (*UploadResult, error) {
	endpoint := c.baseURL + "/upload?" + url.Values{"standard": {"UBL"}, "cif": {cui}}.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err := c.do(ctx, http.MethodPost, endpoint, document)
		if err == nil {
			var resp uploadResponse
			if err := decode(body, &resp); err != nil {
				return nil, fmt.Errorf("decode upload response: %w", err)
			}
			if resp.ExecutionStatus != 0 || resp.UploadIndex == "" {
				return nil, fmt.Errorf("%w: %s", ErrUploadRejected, joinErrors(resp.Errors, "no upload index returned"))
			}
			return &UploadResult{UploadIndex: resp.UploadIndex, Attempts: attempt}, nil
		}

		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
		if attempt < c.maxRetries {
			wait := Backoff(c.baseDelay, attempt)
			c.logger.Warn("anaf upload failed, retrying",
				zap.String("cif", cui),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, c.maxRetries, lastErr)
}

// Status asks ANAF how far the processing of an upload got. It is not retried; the sync job polls again.
func (c *Client) Status(ctx context.Context, uploadIndex string) (result *StatusResult, err error) {
	ctx, span := telemetry.StartClientSpan(ctx, "anaf.status", attribute.String("anaf.upload_index", uploadIndex))
	defer func() { telemetry.EndSpan(span, err) }()

	endpoint := c.baseURL + "/stareMesaj?" + url.Values{"id_incarcare": {uploadIndex}}.Encode()
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var resp statusResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if resp.State == "" && len(resp.Errors) > 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Body: joinErrors(resp.Errors, "")}
	}
	return &StatusResult{
		State:      resp.State,
		DownloadID: resp.DownloadID,
		Message:    joinErrors(resp.Errors, ""),
	}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "text/plain")
	}
	req.Header.Set("Accept", "application/json, application/xml")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func (c *Client) observe(result string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpload(result, time.Since(start))
	}
}

// decode accepts both the JSON and the XML header flavours ANAF answers with.
func decode(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return errors.New("empty response")
	}
	if trimmed[0] == '{' {
		return json.Unmarshal(trimmed, v)
	}
	return xml.Unmarshal(trimmed, v)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func joinErrors(errs []anafError, fallback string) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if m := strings.TrimSpace(e.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return fallback
	}
	return strings.Join(msgs, "; ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
