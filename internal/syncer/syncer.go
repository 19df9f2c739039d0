// Package syncer provides the periodic sync engine. A Syncer fires a Strategy
// on a fixed interval, never runs two cycles of the same Syncer at once, and
// records the timestamps, error and reports of each cycle for observers.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/buildasaur/buildasaur/internal/otel"
	"github.com/buildasaur/buildasaur/internal/telemetry"
)

// Syncer is the periodic sync engine. The zero value is not usable; create one
// with New. All methods are safe for concurrent use.
type Syncer struct {
	name     string
	strategy Strategy

	clock   clock.WithTicker
	logger  *slog.Logger
	metrics *telemetry.SyncMetrics
	tracer  trace.Tracer

	// opMu serializes state transitions and delegate notifications.
	opMu     sync.Mutex
	delegate Delegate
	gen      uint64
	ticker   clock.Ticker
	stopCh   chan struct{}
	cycleID  uint64
	current  *cycle

	// stateMu guards status for readers that must not wait on a transition.
	stateMu    sync.RWMutex
	status     Status
	currentErr error
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger. The syncer name is attached to every record.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.WithTicker) Option {
	return func(s *Syncer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetrics records cycle durations, errors and skipped ticks.
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(s *Syncer) {
		s.metrics = m
	}
}

// WithTracer wraps every cycle in a span.
func WithTracer(t trace.Tracer) Option {
	return func(s *Syncer) {
		s.tracer = t
	}
}

// New creates an inactive Syncer. It panics if strategy is nil or interval is
// not positive.
func New(name string, interval time.Duration, strategy Strategy, opts ...Option) *Syncer {
	if strategy == nil {
		panic("syncer: nil strategy")
	}
	if interval <= 0 {
		panic("syncer: interval must be positive")
	}

	s := &Syncer{
		name:     name,
		strategy: strategy,
		clock:    clock.RealClock{},
		logger:   slog.Default(),
		status: Status{
			Name:     name,
			Interval: interval,
			Reports:  map[string]string{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("syncer", name)
	return s
}

// Name returns the syncer name.
func (s *Syncer) Name() string {
	return s.name
}

// SetDelegate replaces the delegate. A nil delegate disables notifications.
func (s *Syncer) SetDelegate(d Delegate) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.delegate = d
}

// Status returns a snapshot of the syncer state.
func (s *Syncer) Status() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.status.clone()
}

// IsActive reports whether the syncer is started.
func (s *Syncer) IsActive() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.status.Active
}

// IsSyncing reports whether a cycle is in flight.
func (s *Syncer) IsSyncing() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.status.Syncing
}

// Start activates the syncer: the timer is armed, a first cycle is attempted
// immediately and the delegate is told the syncer became active. Starting an
// active syncer does nothing. Cancelling ctx stops the syncer.
func (s *Syncer) Start(ctx context.Context) {
	s.opMu.Lock()

	if s.Status().Active {
		s.opMu.Unlock()
		return
	}

	s.gen++
	gen := s.gen
	s.ticker = s.clock.NewTicker(s.Status().Interval)
	s.stopCh = make(chan struct{})
	s.setState(func(st *Status) { st.Active = true })

	go s.loop(ctx, gen, s.ticker, s.stopCh)

	s.logger.Info("Syncer started", "interval", s.Status().Interval.String())
	c := s.tickLocked(ctx)
	s.notify(func(d Delegate) { d.BecameActive(s) })
	s.opMu.Unlock()

	s.run(c)
}

// Stop deactivates the syncer and disarms its timer. A cycle already in
// flight runs to completion and is still recorded. Stopping an inactive
// syncer does nothing.
func (s *Syncer) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.Status().Active {
		return
	}

	s.gen++
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.setState(func(st *Status) { st.Active = false })

	s.logger.Info("Syncer stopped")
	s.notify(func(d Delegate) { d.Stopped(s) })
}

// ReportError records err against the in-flight cycle. It is ignored when no
// cycle is running.
func (s *Syncer) ReportError(err error, errContext string) {
	s.opMu.Lock()
	c := s.current
	s.opMu.Unlock()

	if c == nil {
		s.logger.Warn("Ignoring error reported outside of a sync cycle", "error", err, "context", errContext)
		return
	}
	c.ReportError(err, errContext)
}

func (s *Syncer) loop(ctx context.Context, gen uint64, ticker clock.Ticker, stopCh <-chan struct{}) {
	for {
		select {
		case <-ticker.C():
			s.opMu.Lock()
			if gen != s.gen {
				s.opMu.Unlock()
				return
			}
			c := s.tickLocked(ctx)
			s.opMu.Unlock()
			s.run(c)
		case <-stopCh:
			return
		case <-ctx.Done():
			s.Stop()
			return
		}
	}
}

// tickLocked decides what a timer tick does and begins a cycle if one may
// start. The returned cycle, if any, must be handed to run after opMu is
// released.
func (s *Syncer) tickLocked(ctx context.Context) *cycle {
	st := s.Status()
	if !st.Active {
		if s.ticker != nil {
			s.ticker.Stop()
			s.ticker = nil
		}
		return nil
	}

	if st.Syncing {
		s.logger.Warn("Skipping sync, previous cycle is still running; consider a longer interval",
			"interval", st.Interval.String())
		s.setState(func(st *Status) { st.SkippedTicks++ })
		s.metrics.RecordSkippedTick(ctx, s.name)
		return nil
	}

	return s.beginCycleLocked(ctx)
}

func (s *Syncer) beginCycleLocked(ctx context.Context) *cycle {
	s.cycleID++
	now := s.clock.Now()

	spanCtx, span := otel.StartSpan(context.WithoutCancel(ctx), s.tracer, "syncer.cycle",
		trace.WithAttributes(
			otel.AttrSyncerName.String(s.name),
			attribute.Int64("syncer.cycle", int64(s.cycleID)),
		),
	)

	c := &cycle{
		syncer: s,
		id:     s.cycleID,
		ctx:    spanCtx,
		span:   span,
		start:  now,
	}
	s.current = c

	s.stateMu.Lock()
	s.status.Syncing = true
	s.status.Reports = map[string]string{}
	s.status.LastSyncStart = &now
	s.currentErr = nil
	s.stateMu.Unlock()

	s.logger.Debug("Sync cycle started", "cycle", c.id)
	s.notify(func(d Delegate) { d.DidStartSyncing(s) })
	return c
}

func (s *Syncer) run(c *cycle) {
	if c == nil {
		return
	}
	go s.strategy.Sync(c.ctx, c, c.done)
}

func (s *Syncer) notify(fn func(Delegate)) {
	if s.delegate != nil {
		fn(s.delegate)
	}
}

func (s *Syncer) setState(fn func(*Status)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	fn(&s.status)
}

// cycle is the Reporter handed to the Strategy for a single pass.
type cycle struct {
	syncer *Syncer
	id     uint64
	ctx    context.Context
	span   trace.Span
	start  time.Time
	once   sync.Once
}

var _ Reporter = (*cycle)(nil)

func (c *cycle) ReportError(err error, errContext string) {
	s := c.syncer
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.current != c {
		s.logger.Warn("Ignoring error reported after the cycle finished",
			"cycle", c.id, "error", err, "context", errContext)
		return
	}
	if err == nil {
		err = ErrUnspecified
	}

	cerr := &CycleError{Err: err, Context: errContext}
	s.stateMu.Lock()
	s.currentErr = cerr
	s.stateMu.Unlock()

	s.logger.Error(cerr.Error(), "cycle", c.id)
	s.metrics.RecordCycleError(c.ctx, s.name)
	c.span.AddEvent("sync.error", trace.WithAttributes(attribute.String("context", errContext)))
	s.notify(func(d Delegate) { d.EncounteredError(s, cerr) })
}

func (c *cycle) SetReport(key, value string) {
	s := c.syncer
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.current != c {
		s.logger.Warn("Ignoring report set after the cycle finished", "cycle", c.id, "key", key)
		return
	}
	s.setState(func(st *Status) { st.Reports[key] = value })
}

func (c *cycle) done() {
	c.once.Do(c.finish)
}

func (c *cycle) finish() {
	s := c.syncer
	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.clock.Now()
	took := now.Sub(c.start)

	s.stateMu.Lock()
	err := s.currentErr
	s.status.LastSyncFinished = &now
	if err != nil {
		s.status.LastSyncError = err
	} else {
		s.status.LastSyncError = nil
		s.status.LastSuccessfulSyncFinished = &now
	}
	s.status.Syncing = false
	s.stateMu.Unlock()
	s.current = nil

	s.metrics.RecordCycleDuration(c.ctx, s.name, took, err == nil)
	otel.RecordError(c.span, err)
	c.span.End()

	if err != nil {
		s.logger.Warn("Sync finished with error", "cycle", c.id, "took", took.String(), "error", err)
	} else {
		s.logger.Info("Sync finished successfully", "cycle", c.id, "took", took.String())
	}
	s.notify(func(d Delegate) { d.DidFinishSyncing(s) })
}
