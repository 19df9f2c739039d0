// Package workspace derives the source-control identity of a local project:
// its repository URL, checkout protocol and working-copy identifiers.
package workspace

import (
	"log/slog"
	"strings"
)

// CheckoutType is the protocol the CI server uses to check out the project.
type CheckoutType string

const (
	// CheckoutTypeSSH checks out over SSH with the configured key pair.
	CheckoutTypeSSH CheckoutType = "SSH"
)

// SupportedCheckoutTypes lists every checkout type Parse accepts.
var SupportedCheckoutTypes = []CheckoutType{CheckoutTypeSSH}

// Field names reported by MissingFieldError.
const (
	FieldProjectName           = "projectName"
	FieldProjectPath           = "projectPath"
	FieldWorkingCopyIdentifier = "workingCopyIdentifier"
	FieldWorkingCopyName       = "workingCopyName"
	FieldProjectURL            = "projectURL"
)

const (
	sshUserPrefix = "git@"
	schemeGitHub  = "github.com"
	schemeHTTPS   = "https"
)

// Raw holds the unvalidated metadata strings read from a project's
// configuration. An empty string means the value is absent.
type Raw struct {
	ProjectName           string
	ProjectPath           string
	WorkingCopyIdentifier string
	WorkingCopyName       string
	ProjectURL            string
}

// Metadata is the validated source-control identity of a project. It can only
// be obtained from Parse or WithURL and is never mutated afterwards.
type Metadata struct {
	projectName           string
	projectPath           string
	workingCopyIdentifier string
	workingCopyName       string
	url                   ProjectURL
	checkoutType          CheckoutType
}

// Option configures Parse.
type Option func(*parseConfig)

type parseConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *parseConfig) {
		cfg.logger = logger
	}
}

// Parse validates raw metadata. It fails with *MissingFieldError when any input
// is empty, *UnsupportedCheckoutError when the URL scheme has no checkout type
// and *MalformedURLError when the normalized URL cannot be parsed. SSH URLs are
// normalized to carry the "git@" prefix.
func Parse(raw Raw, opts ...Option) (Metadata, error) {
	cfg := &parseConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	required := []struct {
		field string
		value string
	}{
		{FieldProjectName, raw.ProjectName},
		{FieldProjectPath, raw.ProjectPath},
		{FieldWorkingCopyIdentifier, raw.WorkingCopyIdentifier},
		{FieldWorkingCopyName, raw.WorkingCopyName},
		{FieldProjectURL, raw.ProjectURL},
	}
	for _, r := range required {
		if r.value == "" {
			return Metadata{}, &MissingFieldError{Field: r.field}
		}
	}

	scheme := checkoutScheme(raw.ProjectURL)
	checkoutType, ok := checkoutTypeForScheme(scheme, cfg.logger)
	if !ok {
		return Metadata{}, &UnsupportedCheckoutError{Scheme: scheme, Supported: SupportedCheckoutTypes}
	}

	normalized := raw.ProjectURL
	if checkoutType == CheckoutTypeSSH && !strings.HasPrefix(normalized, sshUserPrefix) {
		normalized = sshUserPrefix + normalized
	}

	projectURL, err := parseProjectURL(normalized)
	if err != nil {
		return Metadata{}, &MalformedURLError{URL: raw.ProjectURL, Err: err}
	}

	return Metadata{
		projectName:           raw.ProjectName,
		projectPath:           raw.ProjectPath,
		workingCopyIdentifier: raw.WorkingCopyIdentifier,
		workingCopyName:       raw.WorkingCopyName,
		url:                   projectURL,
		checkoutType:          checkoutType,
	}, nil
}

// WithURL re-runs Parse with the project URL replaced, e.g. to point the
// project at a fork. The receiver is left untouched.
func (m Metadata) WithURL(projectURL string, opts ...Option) (Metadata, error) {
	raw := m.Raw()
	raw.ProjectURL = projectURL
	return Parse(raw, opts...)
}

// Raw returns the inputs that reproduce m through Parse.
func (m Metadata) Raw() Raw {
	return Raw{
		ProjectName:           m.projectName,
		ProjectPath:           m.projectPath,
		WorkingCopyIdentifier: m.workingCopyIdentifier,
		WorkingCopyName:       m.workingCopyName,
		ProjectURL:            m.url.String(),
	}
}

// ProjectName returns the project name.
func (m Metadata) ProjectName() string { return m.projectName }

// ProjectPath returns the local filesystem path of the project root.
func (m Metadata) ProjectPath() string { return m.projectPath }

// WorkingCopyIdentifier returns the identifier CI results are correlated by.
func (m Metadata) WorkingCopyIdentifier() string { return m.workingCopyIdentifier }

// WorkingCopyName returns the working copy name.
func (m Metadata) WorkingCopyName() string { return m.workingCopyName }

// URL returns the normalized project URL.
func (m Metadata) URL() ProjectURL { return m.url }

// CheckoutType returns the checkout protocol inferred from the URL.
func (m Metadata) CheckoutType() CheckoutType { return m.checkoutType }

func checkoutTypeForScheme(scheme string, logger *slog.Logger) (CheckoutType, bool) {
	switch scheme {
	case schemeGitHub:
		return CheckoutTypeSSH, true
	case schemeHTTPS:
		// HTTPS git and SVN remotes look alike here; neither is supported yet.
		logger.Error("HTTPS or SVN checkouts are not yet supported, check the project out over SSH",
			"scheme", scheme)
		return "", false
	default:
		logger.Warn("Unsupported checkout scheme", "scheme", scheme)
		return "", false
	}
}
