// Package ciserver is a minimal client for the CI server's bot API.
//
// List endpoints wrap their payload in a {"count": n, "results": [...]}
// envelope; single objects are returned bare.
package ciserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/buildasaur/buildasaur/internal/httpclient"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is the subset of the CI server API used by buildasaur.
type Client interface {
	// Ping checks that the server is reachable and the credentials work.
	Ping(ctx context.Context) error
	ListBots(ctx context.Context) ([]Bot, error)
	CreateBot(ctx context.Context, bot Bot) (*Bot, error)
	// UpdateBot replaces the configuration of bot.ID, blueprint included.
	UpdateBot(ctx context.Context, bot Bot) (*Bot, error)
	DeleteBot(ctx context.Context, id, rev string) error
	// LatestIntegration returns the newest integration of a bot, or nil when
	// the bot never integrated.
	LatestIntegration(ctx context.Context, botID string) (*Integration, error)
	// StartIntegration queues a new integration of a bot.
	StartIntegration(ctx context.Context, botID string) (*Integration, error)
}

// ErrMissingResults is returned when a list response has no results array.
var ErrMissingResults = errors.New("response has no results")

type client struct {
	http    httpclient.Client
	baseURL string
}

type clientOptions struct {
	http     httpclient.Client
	timeout  time.Duration
	insecure bool
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithHTTPClient replaces the transport, bypassing basic authentication.
func WithHTTPClient(c httpclient.Client) Option {
	return func(o *clientOptions) {
		o.http = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithInsecureTLS accepts self-signed server certificates.
func WithInsecureTLS(insecure bool) Option {
	return func(o *clientOptions) {
		o.insecure = insecure
	}
}

// NewClient creates a client for the server at serverURL. The API lives under
// /api; it is appended unless serverURL already ends with it.
func NewClient(serverURL, user, password string, opts ...Option) Client {
	o := &clientOptions{timeout: httpclient.DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if o.http == nil {
		httpOpts := []httpclient.Option{httpclient.WithBasicAuth(user, password)}
		if o.insecure {
			httpOpts = append(httpOpts, httpclient.WithInsecureTLS())
		}
		o.http = httpclient.NewDefaultClient(o.timeout, httpOpts...)
	}

	base := strings.TrimRight(serverURL, "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}
	return &client{http: o.http, baseURL: base}
}

func (c *client) url(elem ...string) string {
	parts := []string{c.baseURL}
	for _, e := range elem {
		parts = append(parts, url.PathEscape(e))
	}
	return strings.Join(parts, "/")
}

func (c *client) Ping(ctx context.Context) error {
	if _, err := c.http.Get(ctx, c.url("ping")); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (c *client) ListBots(ctx context.Context) ([]Bot, error) {
	data, err := c.http.Get(ctx, c.url("bots"))
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}

	results, err := resultsOf(data)
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}

	var bots []Bot
	if err := json.Unmarshal([]byte(results.Raw), &bots); err != nil {
		return nil, fmt.Errorf("failed to decode bots: %w", err)
	}
	return bots, nil
}

func (c *client) CreateBot(ctx context.Context, bot Bot) (*Bot, error) {
	bot.ID, bot.Rev = "", ""
	data, err := c.http.Do(ctx, http.MethodPost, c.url("bots"), bot)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot %q: %w", bot.Name, err)
	}
	return decodeBot(data)
}

func (c *client) UpdateBot(ctx context.Context, bot Bot) (*Bot, error) {
	if bot.ID == "" {
		return nil, errors.New("cannot update a bot without an id")
	}
	u := c.url("bots", bot.ID) + "?overwriteBlueprint=true"
	data, err := c.http.Do(ctx, http.MethodPatch, u, bot)
	if err != nil {
		return nil, fmt.Errorf("failed to update bot %q: %w", bot.Name, err)
	}
	return decodeBot(data)
}

func (c *client) DeleteBot(ctx context.Context, id, rev string) error {
	if _, err := c.http.Do(ctx, http.MethodDelete, c.url("bots", id, rev), nil); err != nil {
		return fmt.Errorf("failed to delete bot %s: %w", id, err)
	}
	return nil
}

func (c *client) LatestIntegration(ctx context.Context, botID string) (*Integration, error) {
	data, err := c.http.Get(ctx, c.url("bots", botID, "integrations")+"?last=1")
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations of bot %s: %w", botID, err)
	}

	results, err := resultsOf(data)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations of bot %s: %w", botID, err)
	}

	var latest *Integration
	for _, item := range results.Array() {
		integration, err := decodeIntegration([]byte(item.Raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode integration: %w", err)
		}
		if latest == nil || integration.Number > latest.Number {
			latest = &integration
		}
	}
	return latest, nil
}

func (c *client) StartIntegration(ctx context.Context, botID string) (*Integration, error) {
	data, err := c.http.Do(ctx, http.MethodPost, c.url("bots", botID, "integrations"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start integration of bot %s: %w", botID, err)
	}
	integration, err := decodeIntegration(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode integration: %w", err)
	}
	return &integration, nil
}

func resultsOf(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("response is not valid JSON")
	}
	results := gjson.GetBytes(data, "results")
	if !results.IsArray() {
		return gjson.Result{}, ErrMissingResults
	}
	return results, nil
}

func decodeBot(data []byte) (*Bot, error) {
	var bot Bot
	if err := json.Unmarshal(data, &bot); err != nil {
		return nil, fmt.Errorf("failed to decode bot: %w", err)
	}
	return &bot, nil
}
