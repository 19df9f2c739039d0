// Package github is a minimal GitHub REST client covering what the bot
// reconciliation needs: open pull requests and commit statuses.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/buildasaur/buildasaur/internal/httpclient"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

const (
	apiVersion = "2022-11-28"
	pageSize   = 100
	// maxPages bounds pagination of any single listing.
	maxPages = 20
)

// ErrTooManyPullRequests is returned when the open pull requests do not fit in
// maxPages pages. A truncated listing would make unlisted pull requests look
// closed.
var ErrTooManyPullRequests = errors.New("too many open pull requests")

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is the subset of the GitHub API used by buildasaur.
type Client interface {
	// GetRepository fetches a repository, verifying the credentials can see it.
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	// ListOpenPullRequests returns every open pull request of the repository.
	ListOpenPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error)
	// LatestStatus returns the newest status posted on sha under statusContext,
	// or nil if there is none.
	LatestStatus(ctx context.Context, owner, repo, sha, statusContext string) (*CommitStatus, error)
	// PostStatus creates a commit status on sha.
	PostStatus(ctx context.Context, owner, repo, sha string, status CommitStatus) error
}

type client struct {
	http    httpclient.Client
	baseURL string
}

type clientOptions struct {
	http    httpclient.Client
	timeout time.Duration
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithHTTPClient replaces the transport, bypassing token authentication.
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

// NewClient creates a client for the API at baseURL authenticated with token.
// An empty baseURL means DefaultBaseURL.
func NewClient(ctx context.Context, baseURL, token string, opts ...Option) Client {
	o := &clientOptions{timeout: httpclient.DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if o.http == nil {
		hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		hc.Timeout = o.timeout
		o.http = httpclient.NewDefaultClient(o.timeout,
			httpclient.WithHTTPClient(hc),
			httpclient.WithHeader("X-GitHub-Api-Version", apiVersion),
		)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		http:    o.http,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *client) repoURL(owner, repo string, elem ...string) string {
	parts := append([]string{c.baseURL, "repos", url.PathEscape(owner), url.PathEscape(repo)}, elem...)
	return strings.Join(parts, "/")
}

func (c *client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	data, err := c.http.Get(ctx, c.repoURL(owner, repo))
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, repo, err)
	}

	var r Repository
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode repository %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}

func (c *client) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	var all []PullRequest
	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%w: %s/%s has more than %d", ErrTooManyPullRequests, owner, repo, maxPages*pageSize)
		}

		q := url.Values{}
		q.Set("state", "open")
		q.Set("per_page", fmt.Sprint(pageSize))
		q.Set("page", fmt.Sprint(page))

		data, err := c.http.Get(ctx, c.repoURL(owner, repo, "pulls")+"?"+q.Encode())
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests of %s/%s: %w", owner, repo, err)
		}

		var batch []PullRequest
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode pull requests of %s/%s: %w", owner, repo, err)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

func (c *client) LatestStatus(ctx context.Context, owner, repo, sha, statusContext string) (*CommitStatus, error) {
	u := c.repoURL(owner, repo, "commits", url.PathEscape(sha), "statuses") + fmt.Sprintf("?per_page=%d", pageSize)
	data, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses of %s: %w", sha, err)
	}

	var statuses []CommitStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode statuses of %s: %w", sha, err)
	}
	// newest first
	for i := range statuses {
		if statuses[i].Context == statusContext {
			return &statuses[i], nil
		}
	}
	return nil, nil
}

func (c *client) PostStatus(ctx context.Context, owner, repo, sha string, status CommitStatus) error {
	if !status.State.Valid() {
		return fmt.Errorf("invalid commit status state %q", status.State)
	}
	if len(status.Description) > maxDescriptionLen {
		status.Description = status.Description[:maxDescriptionLen-3] + "..."
	}

	_, err := c.http.Do(ctx, http.MethodPost, c.repoURL(owner, repo, "statuses", url.PathEscape(sha)), status)
	if err != nil {
		return fmt.Errorf("failed to post status on %s: %w", sha, err)
	}
	return nil
}
