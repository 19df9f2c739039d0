package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildasaur/buildasaur/internal/syncer"
)

func noopStrategy() syncer.Strategy {
	return syncer.StrategyFunc(func(_ context.Context, _ syncer.Reporter, done func()) { done() })
}

func TestSyncerSet(t *testing.T) {
	t.Parallel()

	set := NewSyncerSet(
		syncer.New("zeta", time.Hour, noopStrategy()),
		syncer.New("alpha", time.Hour, noopStrategy()),
	)
	require.Equal(t, 2, set.Len())

	_, ok := set.Get("missing")
	assert.False(t, ok)
	_, ok = set.Status("missing")
	assert.False(t, ok)

	statuses := set.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "alpha", statuses[0].Name)
	assert.Equal(t, "zeta", statuses[1].Name)
	assert.False(t, statuses[0].Active)

	set.Start(context.Background())
	for _, s := range set.Statuses() {
		assert.True(t, s.Active, s.Name)
	}
	zeta, ok := set.Status("zeta")
	require.True(t, ok)
	assert.True(t, zeta.Active)

	set.Stop()
	for _, s := range set.Statuses() {
		assert.False(t, s.Active, s.Name)
	}
}

func TestSyncerSet_Empty(t *testing.T) {
	t.Parallel()

	set := NewSyncerSet()
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Statuses())
	set.Start(context.Background())
	set.Stop()
}

func TestLogDelegate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := syncer.New("app", time.Hour, syncer.StrategyFunc(func(_ context.Context, r syncer.Reporter, done func()) {
		r.SetReport("pull_requests", "3")
		r.ReportError(errors.New("boom"), "listing bots")
		done()
	}))
	d := newLogDelegate(logger)
	s.SetDelegate(d)

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		st := s.Status()
		return st.LastSyncFinished != nil && !st.Syncing
	}, time.Second, 10*time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Syncer became active")
	assert.Contains(t, out, "Sync started")
	assert.Contains(t, out, "Syncer encountered an error")
	assert.Contains(t, out, "Context: listing bots")
	assert.Contains(t, out, "Sync finished with errors")
	assert.Contains(t, out, "pull_requests=3")
	assert.Contains(t, out, "Syncer stopped")
}

func TestNewLogDelegate_NilLogger(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, newLogDelegate(nil).logger)
}
