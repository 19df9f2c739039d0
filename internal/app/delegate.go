package app

import (
	"log/slog"

	"github.com/buildasaur/buildasaur/internal/syncer"
)

// logDelegate reports syncer transitions to the log.
type logDelegate struct {
	logger *slog.Logger
}

var _ syncer.Delegate = (*logDelegate)(nil)

func newLogDelegate(logger *slog.Logger) *logDelegate {
	if logger == nil {
		logger = slog.Default()
	}
	return &logDelegate{logger: logger}
}

func (d *logDelegate) BecameActive(s *syncer.Syncer) {
	d.logger.Info("Syncer became active", "syncer", s.Name(), "interval", s.Status().Interval)
}

func (d *logDelegate) Stopped(s *syncer.Syncer) {
	d.logger.Info("Syncer stopped", "syncer", s.Name())
}

func (d *logDelegate) DidStartSyncing(s *syncer.Syncer) {
	d.logger.Debug("Sync started", "syncer", s.Name())
}

func (d *logDelegate) DidFinishSyncing(s *syncer.Syncer) {
	status := s.Status()
	attrs := []any{"syncer", s.Name()}
	for k, v := range status.Reports {
		attrs = append(attrs, k, v)
	}
	if status.LastSyncError != nil {
		d.logger.Warn("Sync finished with errors", append(attrs, "error", status.LastSyncError)...)
		return
	}
	d.logger.Debug("Sync finished", attrs...)
}

func (d *logDelegate) EncounteredError(s *syncer.Syncer, err error) {
	d.logger.Error("Syncer encountered an error", "syncer", s.Name(), "error", err)
}
