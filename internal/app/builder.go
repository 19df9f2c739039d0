package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/buildasaur/buildasaur/internal/api"
	"github.com/buildasaur/buildasaur/internal/ciserver"
	"github.com/buildasaur/buildasaur/internal/config"
	"github.com/buildasaur/buildasaur/internal/github"
	"github.com/buildasaur/buildasaur/internal/reconcile"
	"github.com/buildasaur/buildasaur/internal/storage"
	"github.com/buildasaur/buildasaur/internal/syncer"
	"github.com/buildasaur/buildasaur/internal/telemetry"
	"github.com/buildasaur/buildasaur/internal/versions"
	"github.com/buildasaur/buildasaur/internal/workspace"
)

const (
	defaultRequestTimeout      = 10 * time.Second
	defaultReadTimeout         = 10 * time.Second
	defaultWriteTimeout        = 15 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultAvailabilityTimeout = 10 * time.Second

	tracerName = "github.com/buildasaur/buildasaur"
)

// GitHubClientFactory creates the source-hosting client of a project.
type GitHubClientFactory func(ctx context.Context, project *config.ProjectConfig) (github.Client, error)

// CIServerClientFactory creates the CI server client of a project.
type CIServerClientFactory func(project *config.ProjectConfig) (ciserver.Client, error)

// MetadataLoader resolves the working copy of a project.
type MetadataLoader func(project *config.ProjectConfig) (workspace.Metadata, error)

// AppOption is a function that configures the app builder
//
//nolint:revive // This name is fine
type AppOption func(*appConfig) error

type appConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	templateStore   storage.TemplateStore
	githubFactory   GitHubClientFactory
	ciServerFactory CIServerClientFactory
	metadataLoader  MetadataLoader
	syncerOptions   []syncer.Option

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	dataDir string

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler

	checkAvailability bool
	logger            *slog.Logger
}

func baseConfig(opts ...AppOption) (*appConfig, error) {
	cfg := &appConfig{
		requestTimeout:    defaultRequestTimeout,
		readTimeout:       defaultReadTimeout,
		writeTimeout:      defaultWriteTimeout,
		idleTimeout:       defaultIdleTimeout,
		githubFactory:     NewGitHubClient,
		ciServerFactory:   NewCIServerClient,
		metadataLoader:    LoadMetadata,
		checkAvailability: true,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.GetHTTPAddress()
	}
	if cfg.dataDir == "" {
		cfg.dataDir = cfg.config.GetDataDir()
	}

	return cfg, nil
}

// NewBuildasaurApp wires configuration, clients, strategies, syncers and the
// status API into an app ready to Start.
func NewBuildasaurApp(ctx context.Context, opts ...AppOption) (*BuildasaurApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.templateStore == nil {
		if err := prepareDataDir(cfg.dataDir, versions.GetVersionInfo().Version, cfg.logger); err != nil {
			return nil, err
		}
		store, err := storage.NewFileTemplateStore(
			filepath.Join(cfg.dataDir, config.TemplatesDirName), storage.WithLogger(cfg.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open template store: %w", err)
		}
		cfg.templateStore = store
	}

	syncers, err := buildSyncComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, syncers)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &BuildasaurApp{
		config: cfg.config,
		components: &AppComponents{
			Syncers:   syncers,
			Templates: cfg.templateStore,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) AppOption {
	return func(cfg *appConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding httpAddress
func WithAddress(addr string) AppOption {
	return func(cfg *appConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) AppOption {
	return func(cfg *appConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithDataDirectory overrides dataDir
func WithDataDirectory(dir string) AppOption {
	return func(cfg *appConfig) error {
		cfg.dataDir = dir
		return nil
	}
}

// WithTemplateStore allows injecting a template store (for testing)
func WithTemplateStore(s storage.TemplateStore) AppOption {
	return func(cfg *appConfig) error {
		cfg.templateStore = s
		return nil
	}
}

// WithGitHubClientFactory allows injecting source-hosting clients (for testing)
func WithGitHubClientFactory(f GitHubClientFactory) AppOption {
	return func(cfg *appConfig) error {
		cfg.githubFactory = f
		return nil
	}
}

// WithCIServerClientFactory allows injecting CI server clients (for testing)
func WithCIServerClientFactory(f CIServerClientFactory) AppOption {
	return func(cfg *appConfig) error {
		cfg.ciServerFactory = f
		return nil
	}
}

// WithMetadataLoader allows injecting working copy discovery (for testing)
func WithMetadataLoader(l MetadataLoader) AppOption {
	return func(cfg *appConfig) error {
		cfg.metadataLoader = l
		return nil
	}
}

// WithSyncerOptions passes extra options to every syncer
func WithSyncerOptions(opts ...syncer.Option) AppOption {
	return func(cfg *appConfig) error {
		cfg.syncerOptions = append(cfg.syncerOptions, opts...)
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for sync and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) AppOption {
	return func(cfg *appConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) AppOption {
	return func(cfg *appConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) AppOption {
	return func(cfg *appConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// WithAvailabilityCheck toggles the start-up credential check
func WithAvailabilityCheck(enabled bool) AppOption {
	return func(cfg *appConfig) error {
		cfg.checkAvailability = enabled
		return nil
	}
}

// WithLogger sets the logger handed to every component
func WithLogger(logger *slog.Logger) AppOption {
	return func(cfg *appConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// LoadMetadata discovers the working copy at the project path.
func LoadMetadata(project *config.ProjectConfig) (workspace.Metadata, error) {
	return workspace.DiscoverMetadata(project.Path, project.URL)
}

// NewGitHubClient creates a token-authenticated client for the project.
func NewGitHubClient(ctx context.Context, project *config.ProjectConfig) (github.Client, error) {
	token, err := project.GitHub.GetToken()
	if err != nil {
		return nil, err
	}
	return github.NewClient(ctx, project.GitHub.GetBaseURL(), token), nil
}

// NewCIServerClient creates a basic-auth client for the project.
func NewCIServerClient(project *config.ProjectConfig) (ciserver.Client, error) {
	password, err := project.CIServer.GetPassword()
	if err != nil {
		return nil, err
	}
	return ciserver.NewClient(project.CIServer.URL, project.CIServer.User, password,
		ciserver.WithInsecureTLS(project.CIServer.Insecure)), nil
}

// buildSyncComponents builds one reconciling syncer per project
func buildSyncComponents(ctx context.Context, b *appConfig) (*SyncerSet, error) {
	b.logger.Info("Initializing sync components", "projects", len(b.config.Projects))

	syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	reconcileMetrics, err := telemetry.NewReconcileMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile metrics: %w", err)
	}
	if syncMetrics != nil {
		b.logger.Info("Sync metrics enabled")
	}

	var tracer trace.Tracer
	if b.tracerProvider != nil {
		tracer = b.tracerProvider.Tracer(tracerName)
	}

	syncers := make([]*syncer.Syncer, 0, len(b.config.Projects))
	for i := range b.config.Projects {
		project := &b.config.Projects[i]
		logger := b.logger.With("syncer", project.Name)

		meta, err := b.metadataLoader(project)
		if err != nil {
			return nil, fmt.Errorf("project %s: failed to load workspace metadata: %w", project.Name, err)
		}

		gh, err := b.githubFactory(ctx, project)
		if err != nil {
			return nil, fmt.Errorf("project %s: failed to create github client: %w", project.Name, err)
		}
		ci, err := b.ciServerFactory(project)
		if err != nil {
			return nil, fmt.Errorf("project %s: failed to create ci server client: %w", project.Name, err)
		}

		strategy, err := reconcile.New(meta, project.TemplateID, gh, ci, b.templateStore,
			reconcile.WithLogger(logger),
			reconcile.WithParallelism(project.Parallelism),
			reconcile.WithMetrics(reconcileMetrics),
			reconcile.WithTracer(tracer),
		)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", project.Name, err)
		}

		if b.checkAvailability {
			CheckAvailability(ctx, logger, meta, gh, ci)
		}

		opts := append([]syncer.Option{
			syncer.WithLogger(b.logger),
			syncer.WithMetrics(syncMetrics),
			syncer.WithTracer(tracer),
		}, b.syncerOptions...)
		s := syncer.New(project.Name, project.GetSyncInterval(), strategy, opts...)
		s.SetDelegate(newLogDelegate(b.logger))
		syncers = append(syncers, s)
	}

	b.logger.Info("Sync components initialized successfully")
	return NewSyncerSet(syncers...), nil
}

// CheckAvailability verifies both services accept the configured credentials.
// Failures are logged as warnings and returned; syncing is attempted anyway.
func CheckAvailability(
	ctx context.Context,
	logger *slog.Logger,
	meta workspace.Metadata,
	gh github.Client,
	ci ciserver.Client,
) []error {
	ctx, cancel := context.WithTimeout(ctx, defaultAvailabilityTimeout)
	defer cancel()

	var errs []error
	if owner, repo, ok := meta.URL().OwnerAndRepo(); ok {
		repository, err := gh.GetRepository(ctx, owner, repo)
		switch {
		case err != nil:
			logger.Warn("Repository is not reachable", "repository", owner+"/"+repo, "error", err)
			errs = append(errs, fmt.Errorf("github: %w", err))
		case !repository.Permissions.Push:
			logger.Warn("Token cannot post commit statuses, push access is required", "repository", repository.FullName)
			errs = append(errs, fmt.Errorf("github: no push access to %s", repository.FullName))
		default:
			logger.Info("Repository is reachable", "repository", repository.FullName)
		}
	}

	if err := ci.Ping(ctx); err != nil {
		logger.Warn("CI server is not reachable", "error", err)
		errs = append(errs, fmt.Errorf("ci server: %w", err))
	} else {
		logger.Info("CI server is reachable")
	}
	return errs
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *appConfig,
	syncers *SyncerSet,
) (*http.Server, error) {
	b.logger.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first so they see every request.
	var observe []func(http.Handler) http.Handler
	if b.tracerProvider != nil {
		observe = append(observe, telemetry.TracingMiddleware(b.tracerProvider))
	}
	if b.meterProvider != nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if httpMetrics != nil {
			observe = append(observe, httpMetrics.Middleware)
			b.logger.Info("HTTP metrics middleware enabled")
		}
	}
	b.middlewares = append(observe, b.middlewares...)

	router := api.NewServer(syncers, b.templateStore,
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	b.logger.Info("HTTP server configured", "address", b.address)
	return server, nil
}
