// Package app provides application lifecycle management for the buildasaur server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/buildasaur/buildasaur/internal/config"
)

// BuildasaurApp encapsulates the syncers and the status API server.
// It provides lifecycle management and graceful shutdown capabilities
type BuildasaurApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts every syncer and then serves the status API.
// This method blocks until the HTTP server stops or encounters an error
func (app *BuildasaurApp) Start() error {
	app.components.Syncers.Start(app.ctx)

	slog.Info("Server listening", "address", app.httpServer.Addr, "syncers", app.components.Syncers.Len())
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout
// It stops the syncers and then shuts down the HTTP server
func (app *BuildasaurApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	app.components.Syncers.Stop()

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *BuildasaurApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *BuildasaurApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetComponents returns the syncers and template store
func (app *BuildasaurApp) GetComponents() *AppComponents {
	return app.components
}
