package syncer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mock_syncer.go -package=mocks -source=types.go Strategy,Delegate,Reporter

// Strategy performs one reconciliation pass. Sync is called on its own
// goroutine once per cycle and must call done exactly once, whatever the
// outcome; failures are reported through r before calling done. Sync may
// return before the work finishes as long as done is called later.
type Strategy interface {
	Sync(ctx context.Context, r Reporter, done func())
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(ctx context.Context, r Reporter, done func())

// Sync calls f.
func (f StrategyFunc) Sync(ctx context.Context, r Reporter, done func()) {
	f(ctx, r, done)
}

// Reporter is the cycle-scoped channel a Strategy reports through.
type Reporter interface {
	// ReportError records err as the cycle's error; the last call wins. The
	// optional context describes what the strategy was doing.
	ReportError(err error, errContext string)

	// SetReport stores a free-form diagnostic value for the current cycle.
	SetReport(key, value string)
}

// Delegate observes a Syncer's lifecycle. Calls are made while the Syncer
// holds its transition lock: implementations must not block and must not call
// Start or Stop, though reading Status is fine. Per cycle the order is
// DidStartSyncing, zero or more EncounteredError, DidFinishSyncing.
type Delegate interface {
	BecameActive(s *Syncer)
	Stopped(s *Syncer)
	DidStartSyncing(s *Syncer)
	DidFinishSyncing(s *Syncer)
	EncounteredError(s *Syncer, err error)
}

// ErrUnspecified stands in for a nil error passed to ReportError.
var ErrUnspecified = errors.New("unspecified sync error")

// CycleError is the error delivered to Delegate.EncounteredError.
type CycleError struct {
	Err     error
	Context string
}

func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString("Syncing encountered a problem. ")
	if e.Err != nil {
		fmt.Fprintf(&b, "Error: %s. ", e.Err)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "Context: %s", e.Context)
	}
	return strings.TrimSpace(b.String())
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// Status is a point-in-time snapshot of a Syncer.
type Status struct {
	Name                       string
	Active                     bool
	Syncing                    bool
	Interval                   time.Duration
	LastSyncStart              *time.Time
	LastSyncFinished           *time.Time
	LastSuccessfulSyncFinished *time.Time
	LastSyncError              error
	Reports                    map[string]string
	SkippedTicks               int64
}

// State names the engine state: "stopped", "idle" or "syncing".
func (s Status) State() string {
	switch {
	case !s.Active:
		return "stopped"
	case s.Syncing:
		return "syncing"
	default:
		return "idle"
	}
}

func (s Status) clone() Status {
	s.Reports = maps.Clone(s.Reports)
	s.LastSyncStart = cloneTime(s.LastSyncStart)
	s.LastSyncFinished = cloneTime(s.LastSyncFinished)
	s.LastSuccessfulSyncFinished = cloneTime(s.LastSuccessfulSyncFinished)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
