package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync engine meter
	SyncMetricsMeterName = "github.com/buildasaur/buildasaur/sync"

	// ReconcileMetricsMeterName is the name used for the reconciliation meter
	ReconcileMetricsMeterName = "github.com/buildasaur/buildasaur/reconcile"
)

// SyncMetrics holds the OpenTelemetry instruments for sync cycles
type SyncMetrics struct {
	cycleDuration metric.Float64Histogram
	skippedTicks  metric.Int64Counter
	cycleErrors   metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	cycleDuration, err := meter.Float64Histogram(
		"buildasaur_sync_cycle_duration_seconds",
		metric.WithDescription("Duration of sync cycles in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	skippedTicks, err := meter.Int64Counter(
		"buildasaur_sync_skipped_ticks_total",
		metric.WithDescription("Timer ticks skipped because the previous cycle was still running"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	cycleErrors, err := meter.Int64Counter(
		"buildasaur_sync_cycle_errors_total",
		metric.WithDescription("Errors reported during sync cycles"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		cycleDuration: cycleDuration,
		skippedTicks:  skippedTicks,
		cycleErrors:   cycleErrors,
	}, nil
}

// RecordCycleDuration records the duration of a finished cycle
func (m *SyncMetrics) RecordCycleDuration(ctx context.Context, syncer string, duration time.Duration, success bool) {
	if m == nil || m.cycleDuration == nil {
		return
	}
	m.cycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("syncer", syncer),
		attribute.Bool("success", success),
	))
}

// RecordSkippedTick counts a tick dropped by the reentrancy guard
func (m *SyncMetrics) RecordSkippedTick(ctx context.Context, syncer string) {
	if m == nil || m.skippedTicks == nil {
		return
	}
	m.skippedTicks.Add(ctx, 1, metric.WithAttributes(attribute.String("syncer", syncer)))
}

// RecordCycleError counts an error reported by a strategy
func (m *SyncMetrics) RecordCycleError(ctx context.Context, syncer string) {
	if m == nil || m.cycleErrors == nil {
		return
	}
	m.cycleErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("syncer", syncer)))
}

// BotOperation is a change applied to a CI bot during reconciliation.
type BotOperation string

// Bot operations.
const (
	BotCreated BotOperation = "created"
	BotUpdated BotOperation = "updated"
	BotDeleted BotOperation = "deleted"
)

// ReconcileMetrics holds the OpenTelemetry instruments for reconciliation
type ReconcileMetrics struct {
	botOperations  metric.Int64Counter
	statusesPosted metric.Int64Counter
}

// NewReconcileMetrics creates a new ReconcileMetrics instance with the given
// meter provider. If provider is nil, it returns nil (no-op metrics).
func NewReconcileMetrics(provider metric.MeterProvider) (*ReconcileMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ReconcileMetricsMeterName)

	botOperations, err := meter.Int64Counter(
		"buildasaur_bot_operations_total",
		metric.WithDescription("CI bots created, updated or deleted"),
		metric.WithUnit("{bot}"),
	)
	if err != nil {
		return nil, err
	}

	statusesPosted, err := meter.Int64Counter(
		"buildasaur_commit_statuses_total",
		metric.WithDescription("Commit statuses posted to the source host"),
		metric.WithUnit("{status}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReconcileMetrics{
		botOperations:  botOperations,
		statusesPosted: statusesPosted,
	}, nil
}

// RecordBotOperation counts a bot change for a repository
func (m *ReconcileMetrics) RecordBotOperation(ctx context.Context, repo string, op BotOperation) {
	if m == nil || m.botOperations == nil {
		return
	}
	m.botOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("operation", string(op)),
	))
}

// RecordStatusPosted counts a commit status posted for a repository
func (m *ReconcileMetrics) RecordStatusPosted(ctx context.Context, repo, state string) {
	if m == nil || m.statusesPosted == nil {
		return
	}
	m.statusesPosted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("state", state),
	))
}
