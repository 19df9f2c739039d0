package workspace

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ProjectURL is the parsed remote location of a project checkout. It keeps the
// normalized string form next to its components because scp-like SSH remotes
// ("git@github.com:me/repo.git") have no canonical net/url representation.
type ProjectURL struct {
	raw  string
	user string
	host string
	path string
}

// String returns the normalized URL string, e.g. "git@github.com:me/repo.git".
func (u ProjectURL) String() string {
	return u.raw
}

// User returns the user-info component, "git" for normalized SSH URLs.
func (u ProjectURL) User() string {
	return u.user
}

// Host returns the host component.
func (u ProjectURL) Host() string {
	return u.host
}

// Path returns the repository path without a leading slash.
func (u ProjectURL) Path() string {
	return u.path
}

// OwnerAndRepo splits the path into its owner and repository name, dropping a
// trailing ".git". ok is false when the path is not of the form "owner/repo".
func (u ProjectURL) OwnerAndRepo() (owner, repo string, ok bool) {
	p := strings.TrimSuffix(strings.Trim(u.path, "/"), ".git")
	owner, repo, found := strings.Cut(p, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

func (u ProjectURL) IsZero() bool {
	return u.raw == ""
}

// parseProjectURL parses an already-normalized SSH URL string. scp-like remotes
// are handled by go-git's endpoint parser; "user@host/path" forms fall back to
// net/url with an implied ssh scheme.
func parseProjectURL(s string) (ProjectURL, error) {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 || strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return ProjectURL{}, errors.New("url contains whitespace or control characters")
	}

	if ep, err := transport.NewEndpoint(s); err == nil && ep.Protocol == "ssh" && ep.Host != "" {
		path := strings.TrimPrefix(ep.Path, "/")
		if path == "" {
			return ProjectURL{}, errors.New("url has no repository path")
		}
		return ProjectURL{raw: s, user: ep.User, host: ep.Host, path: path}, nil
	}

	u, err := url.Parse("ssh://" + s)
	if err != nil {
		return ProjectURL{}, err
	}
	if u.Hostname() == "" {
		return ProjectURL{}, fmt.Errorf("url has no host")
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return ProjectURL{}, errors.New("url has no repository path")
	}
	return ProjectURL{raw: s, user: u.User.Username(), host: u.Hostname(), path: path}, nil
}

// checkoutScheme extracts the scheme that decides the checkout type. Strings
// without an explicit scheme ("github.com/me/repo") yield their host.
func checkoutScheme(raw string) string {
	s := strings.TrimPrefix(raw, sshUserPrefix)
	if scheme, _, found := strings.Cut(s, "://"); found {
		return strings.ToLower(scheme)
	}
	colon := strings.IndexByte(s, ':')
	slash := strings.IndexByte(s, '/')
	switch {
	case colon >= 0 && (slash < 0 || colon < slash):
		return strings.ToLower(s[:colon])
	case slash >= 0:
		return strings.ToLower(s[:slash])
	default:
		return strings.ToLower(s)
	}
}
