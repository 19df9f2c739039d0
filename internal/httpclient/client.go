package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout is used when NewDefaultClient gets a zero timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies buildasaur to remote servers.
	DefaultUserAgent = "buildasaur/1.0"
	// DefaultMaxResponseSize bounds response bodies.
	DefaultMaxResponseSize int64 = 10 << 20
	// DefaultMaxTries is the number of attempts for idempotent requests.
	DefaultMaxTries uint = 3

	maxErrorMessageLen = 512
)

// errorMessagePaths are the JSON paths probed for a human readable message in
// an error response, in order.
var errorMessagePaths = []string{"message", "error.message", "error_description", "error", "reason"}

// DefaultClient is the standard Client implementation.
type DefaultClient struct {
	client          *http.Client
	userAgent       string
	headers         http.Header
	username        string
	password        string
	maxResponseSize int64
	maxTries        uint
	initialBackoff  time.Duration
	logger          *slog.Logger
}

var _ Client = (*DefaultClient)(nil)

// Option configures a DefaultClient.
type Option func(*DefaultClient)

// WithHTTPClient replaces the underlying http.Client, e.g. with an oauth2
// client. Its timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(d *DefaultClient) {
		if c != nil {
			d.client = c
		}
	}
}

// WithBasicAuth sends HTTP basic credentials on every request.
func WithBasicAuth(username, password string) Option {
	return func(d *DefaultClient) {
		d.username = username
		d.password = password
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(d *DefaultClient) {
		d.headers.Set(key, value)
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(d *DefaultClient) {
		d.userAgent = ua
	}
}

// WithMaxResponseSize overrides DefaultMaxResponseSize.
func WithMaxResponseSize(n int64) Option {
	return func(d *DefaultClient) {
		if n > 0 {
			d.maxResponseSize = n
		}
	}
}

// WithRetry sets the attempt count and first backoff interval for
// idempotent requests. maxTries of 1 disables retries.
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(d *DefaultClient) {
		if maxTries > 0 {
			d.maxTries = maxTries
		}
		if initial > 0 {
			d.initialBackoff = initial
		}
	}
}

// WithInsecureTLS disables certificate verification, for CI servers with
// self-signed certificates.
func WithInsecureTLS() Option {
	return func(d *DefaultClient) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in
		d.client.Transport = transport
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DefaultClient) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDefaultClient creates a client with the given request timeout.
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		userAgent:       DefaultUserAgent,
		headers:         http.Header{},
		maxResponseSize: DefaultMaxResponseSize,
		maxTries:        DefaultMaxTries,
		initialBackoff:  500 * time.Millisecond,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get implements Client.
func (d *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	return d.Do(ctx, http.MethodGet, url, nil)
}

// Do implements Client. GET, PUT and DELETE requests are retried on
// transport errors, 429 and 5xx responses.
func (d *DefaultClient) Do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	op := func() ([]byte, error) {
		return d.attempt(ctx, method, url, payload)
	}

	if !idempotent(method) || d.maxTries <= 1 {
		data, err := op()
		return data, unwrapPermanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialBackoff
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(d.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.logger.DebugContext(ctx, "Retrying request", "method", method, "url", url,
				"error", err, "backoff", next.String())
		}),
	)
}

func (d *DefaultClient) attempt(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	for key, values := range d.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if d.username != "" || d.password != "" {
		req.SetBasicAuth(d.username, d.password)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to execute request: %w", err))
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.ContentLength > d.maxResponseSize {
		return nil, backoff.Permanent(d.tooLarge(resp.ContentLength))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > d.maxResponseSize {
		return nil, backoff.Permanent(d.tooLarge(int64(len(data))))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := NewHTTPError(resp.StatusCode, url, errorMessage(resp.StatusCode, data))
		if !retryable(resp.StatusCode) {
			return nil, backoff.Permanent(httpErr)
		}
		return nil, httpErr
	}

	return data, nil
}

func (d *DefaultClient) tooLarge(size int64) error {
	return fmt.Errorf("response size %d bytes exceeds maximum allowed size of %.2f MB",
		size, float64(d.maxResponseSize)/(1<<20))
}

// errorMessage extracts a message from an error response body, falling back
// to the trimmed body and then the status text.
func errorMessage(statusCode int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range errorMessagePaths {
			if res := gjson.GetBytes(body, path); res.Exists() && res.Type == gjson.String && res.String() != "" {
				return res.String()
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(statusCode)
	}
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen] + "..."
	}
	return msg
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}
