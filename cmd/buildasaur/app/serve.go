package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/buildasaur/buildasaur/internal/app"
	"github.com/buildasaur/buildasaur/internal/config"
	"github.com/buildasaur/buildasaur/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sync every configured project and serve the status API",
	Long: `Start one syncer per configured project and the read-only status API.

The server requires a configuration file (--config) that lists the projects:
- the local checkout the repository is discovered from
- GitHub and CI server access
- the build template and the sync interval`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	telemetryFlushTimeout  = 5 * time.Second
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides httpAddress)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	serveCmd.Flags().String("data-dir", "", "Data directory (overrides dataDir)")

	for _, name := range []string{"address", "config", "data-dir"} {
		if err := viper.BindPFlag(name, serveCmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
			os.Exit(1)
		}
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", configPath, "projects", len(cfg.Projects))

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	opts := []app.AppOption{
		app.WithConfig(cfg),
		app.WithMeterProvider(tel.MeterProvider()),
		app.WithTracerProvider(tel.TracerProvider()),
		app.WithMetricsHandler(tel.MetricsHandler()),
	}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, app.WithAddress(address))
	}
	if dataDir := viper.GetString("data-dir"); dataDir != "" {
		opts = append(opts, app.WithDataDirectory(dataDir))
	}

	buildasaur, err := app.NewBuildasaurApp(ctx, opts...)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- buildasaur.Start()
	}()

	select {
	case err := <-errCh:
		// The server failed on its own; syncers still need stopping.
		if stopErr := buildasaur.Stop(defaultGracefulTimeout); stopErr != nil {
			slog.Error("Failed to stop", "error", stopErr)
		}
		return err
	case <-ctx.Done():
	}

	return buildasaur.Stop(defaultGracefulTimeout)
}
