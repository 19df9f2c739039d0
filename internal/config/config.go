// Package config provides configuration loading and management for buildasaur.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildasaur/buildasaur/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of environment variables bound through viper
	EnvPrefix = "BUILDASAUR"

	// DefaultDataDir is where templates are stored when dataDir is not set
	DefaultDataDir = "./data"

	// DefaultHTTPAddress is the status API listen address
	DefaultHTTPAddress = ":8080"

	// DefaultSyncInterval is the interval between two sync cycles of a project
	DefaultSyncInterval = 15 * time.Second

	// MinSyncInterval is the shortest accepted sync interval
	MinSyncInterval = time.Second

	// DefaultGitHubBaseURL is the GitHub REST API root
	DefaultGitHubBaseURL = "https://api.github.com"

	// GitHubTokenEnvVar is read when no github.tokenFile is configured
	GitHubTokenEnvVar = "BUILDASAUR_GITHUB_TOKEN"

	// CIPasswordEnvVar is read when no ciServer.passwordFile is configured
	CIPasswordEnvVar = "BUILDASAUR_CI_PASSWORD"

	// TemplatesDirName is the subdirectory of the data directory holding build templates
	TemplatesDirName = "templates"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// DataDir holds persistent state; templates live in <dataDir>/templates.
	// Defaults to "./data"
	DataDir string `yaml:"dataDir,omitempty"`

	// HTTPAddress is the listen address of the status API. Defaults to ":8080"
	HTTPAddress string `yaml:"httpAddress,omitempty"`

	Projects []ProjectConfig `yaml:"projects"`

	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ProjectConfig describes one synced repository. Every project gets its own
// syncer, named after the project.
type ProjectConfig struct {
	// Name identifies the project and its syncer; must be unique
	Name string `yaml:"name"`

	// Path is the local git checkout the workspace metadata is discovered from
	Path string `yaml:"path"`

	// URL overrides the origin URL of the checkout, e.g. to sync a fork
	URL string `yaml:"url,omitempty"`

	// TemplateID is the preferred build template. When empty the first valid
	// template offered to the project is used
	TemplateID string `yaml:"templateId,omitempty"`

	// SyncInterval is a duration string such as "30s". Defaults to 15s
	SyncInterval string `yaml:"syncInterval,omitempty"`

	// Parallelism bounds how many pull requests are reconciled at once
	Parallelism int `yaml:"parallelism,omitempty"`

	GitHub   GitHubConfig   `yaml:"github"`
	CIServer CIServerConfig `yaml:"ciServer"`
}

// GitHubConfig defines source-hosting access
type GitHubConfig struct {
	// BaseURL is the API root, https://api.github.com unless set
	BaseURL string `yaml:"baseURL,omitempty"`

	// TokenFile is the path to a file containing the access token
	TokenFile string `yaml:"tokenFile,omitempty"`
}

// CIServerConfig defines CI server access
type CIServerConfig struct {
	// URL is the server root, e.g. https://ci.local:20343
	URL string `yaml:"url"`

	User string `yaml:"user,omitempty"`

	// PasswordFile is the path to a file containing the password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Insecure skips TLS verification. CI servers usually run with a
	// self-signed certificate
	Insecure bool `yaml:"insecure,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetDataDir returns the data directory, using the default if not specified
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir
	}
	return c.DataDir
}

// TemplatesDir returns the directory build templates are stored in
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.GetDataDir(), TemplatesDirName)
}

// GetHTTPAddress returns the status API address, using the default if not specified
func (c *Config) GetHTTPAddress() string {
	if c.HTTPAddress == "" {
		return DefaultHTTPAddress
	}
	return c.HTTPAddress
}

// Project returns the project named name.
func (c *Config) Project(name string) (*ProjectConfig, bool) {
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			return &c.Projects[i], true
		}
	}
	return nil, false
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if len(c.Projects) == 0 {
		return fmt.Errorf("at least one project must be configured")
	}

	var errs []error
	names := make(map[string]bool)
	for i := range c.Projects {
		p := &c.Projects[i]
		if p.Name != "" && names[p.Name] {
			errs = append(errs, fmt.Errorf("projects[%d]: duplicate project name '%s'", i, p.Name))
		}
		names[p.Name] = true

		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("projects[%d] (%s): %w", i, p.Name, err))
		}
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (p *ProjectConfig) validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if p.Path == "" {
		errs = append(errs, fmt.Errorf("path is required"))
	}

	if p.SyncInterval != "" {
		d, err := time.ParseDuration(p.SyncInterval)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("syncInterval must be a valid duration (e.g., '15s', '1m'): %w", err))
		case d < MinSyncInterval:
			errs = append(errs, fmt.Errorf("syncInterval must be at least %s, got %s", MinSyncInterval, d))
		}
	}

	if p.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must not be negative"))
	}

	if p.GitHub.BaseURL != "" {
		if err := validateHTTPURL(p.GitHub.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("github.baseURL: %w", err))
		}
	}

	if p.CIServer.URL == "" {
		errs = append(errs, fmt.Errorf("ciServer.url is required"))
	} else if err := validateHTTPURL(p.CIServer.URL); err != nil {
		errs = append(errs, fmt.Errorf("ciServer.url: %w", err))
	}

	return errors.Join(errs...)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// GetSyncInterval returns the parsed sync interval, DefaultSyncInterval when
// unset. Validate guarantees the string parses.
func (p *ProjectConfig) GetSyncInterval() time.Duration {
	if p.SyncInterval == "" {
		return DefaultSyncInterval
	}
	d, err := time.ParseDuration(p.SyncInterval)
	if err != nil {
		return DefaultSyncInterval
	}
	return d
}

// GetBaseURL returns the GitHub API root, using the default if not specified
func (g *GitHubConfig) GetBaseURL() string {
	if g.BaseURL == "" {
		return DefaultGitHubBaseURL
	}
	return g.BaseURL
}

// GetToken returns the GitHub token using the following priority:
// 1. Read from TokenFile if specified
// 2. Read from BUILDASAUR_GITHUB_TOKEN environment variable
//
// The token from file will have leading/trailing whitespace trimmed.
func (g *GitHubConfig) GetToken() (string, error) {
	return readSecret(g.TokenFile, GitHubTokenEnvVar, "github token", "tokenFile")
}

// GetPassword returns the CI server password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from BUILDASAUR_CI_PASSWORD environment variable
func (c *CIServerConfig) GetPassword() (string, error) {
	return readSecret(c.PasswordFile, CIPasswordEnvVar, "ci server password", "passwordFile")
}

func readSecret(file, envVar, what, field string) (string, error) {
	if file != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(file)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s from file %s: %w", what, file, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("no %s configured: set %s or %s environment variable", what, field, envVar)
}
