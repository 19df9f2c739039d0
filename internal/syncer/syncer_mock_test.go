package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/buildasaur/buildasaur/internal/syncer"
	"github.com/buildasaur/buildasaur/internal/syncer/mocks"
	"github.com/buildasaur/buildasaur/internal/telemetry"
)

func TestSyncer_DelegateOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	strategy := mocks.NewMockStrategy(ctrl)
	delegate := mocks.NewMockDelegate(ctrl)
	boom := errors.New("bots endpoint returned 500")

	finished := make(chan struct{})
	strategy.EXPECT().
		Sync(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, r syncer.Reporter, done func()) {
			r.SetReport("pull_requests", "2")
			r.ReportError(boom, "fetching bots")
			done()
		})

	gomock.InOrder(
		delegate.EXPECT().DidStartSyncing(gomock.Any()),
		delegate.EXPECT().BecameActive(gomock.Any()),
		delegate.EXPECT().EncounteredError(gomock.Any(), gomock.Any()).
			Do(func(_ *syncer.Syncer, err error) {
				assert.ErrorIs(t, err, boom)
				assert.Contains(t, err.Error(), "Context: fetching bots")
			}),
		delegate.EXPECT().DidFinishSyncing(gomock.Any()).
			Do(func(s *syncer.Syncer) {
				st := s.Status()
				assert.Equal(t, "2", st.Reports["pull_requests"])
				close(finished)
			}),
		delegate.EXPECT().Stopped(gomock.Any()),
	)

	s := syncer.New("repo", time.Minute, strategy,
		syncer.WithClock(testingclock.NewFakeClock(time.Now())))
	s.SetDelegate(delegate)

	s.Start(context.Background())
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not finish")
	}
	s.Stop()

	st := s.Status()
	assert.ErrorIs(t, st.LastSyncError, boom)
	assert.Nil(t, st.LastSuccessfulSyncFinished)
}

func TestSyncer_NilDelegate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	strategy := mocks.NewMockStrategy(ctrl)
	strategy.EXPECT().
		Sync(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, _ syncer.Reporter, done func()) { done() })

	s := syncer.New("repo", time.Minute, strategy,
		syncer.WithClock(testingclock.NewFakeClock(time.Now())))
	s.SetDelegate(nil)
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return s.Status().LastSuccessfulSyncFinished != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSyncer_Telemetry(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewSyncMetrics(mp)
	require.NoError(t, err)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	release := make(chan struct{})
	strategy := syncer.StrategyFunc(func(_ context.Context, r syncer.Reporter, done func()) {
		<-release
		r.ReportError(errors.New("boom"), "posting status")
		done()
	})

	clk := testingclock.NewFakeClock(time.Now())
	s := syncer.New("metrics-repo", 10*time.Second, strategy,
		syncer.WithClock(clk),
		syncer.WithMetrics(metrics),
		syncer.WithTracer(tp.Tracer("test")),
	)
	s.Start(context.Background())
	defer s.Stop()

	clk.Step(10 * time.Second)
	require.Eventually(t, func() bool { return s.Status().SkippedTicks == 1 }, 2*time.Second, 5*time.Millisecond)

	close(release)
	require.Eventually(t, func() bool { return len(exporter.GetSpans()) == 1 }, 2*time.Second, 5*time.Millisecond)

	span := exporter.GetSpans()[0]
	assert.Equal(t, "syncer.cycle", span.Name)
	assert.Equal(t, codes.Error, span.Status.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["buildasaur_sync_skipped_ticks_total"])
	assert.True(t, names["buildasaur_sync_cycle_errors_total"])
	assert.True(t, names["buildasaur_sync_cycle_duration_seconds"])
}
