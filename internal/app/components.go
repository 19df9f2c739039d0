package app

import (
	"context"
	"sort"

	v0 "github.com/buildasaur/buildasaur/internal/api/v0"
	"github.com/buildasaur/buildasaur/internal/storage"
	"github.com/buildasaur/buildasaur/internal/syncer"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Syncers holds one syncer per configured project
	Syncers *SyncerSet

	// Templates stores build templates
	Templates storage.TemplateStore
}

// SyncerSet is a fixed collection of syncers addressed by name.
type SyncerSet struct {
	syncers []*syncer.Syncer
	byName  map[string]*syncer.Syncer
}

var _ v0.StatusProvider = (*SyncerSet)(nil)

// NewSyncerSet creates a set from syncers. Names must be unique.
func NewSyncerSet(syncers ...*syncer.Syncer) *SyncerSet {
	set := &SyncerSet{byName: make(map[string]*syncer.Syncer, len(syncers))}
	for _, s := range syncers {
		set.syncers = append(set.syncers, s)
		set.byName[s.Name()] = s
	}
	return set
}

// Len returns the number of syncers.
func (s *SyncerSet) Len() int {
	return len(s.syncers)
}

// Get returns the syncer called name.
func (s *SyncerSet) Get(name string) (*syncer.Syncer, bool) {
	sy, ok := s.byName[name]
	return sy, ok
}

// Start starts every syncer. Each runs its first cycle right away.
func (s *SyncerSet) Start(ctx context.Context) {
	for _, sy := range s.syncers {
		sy.Start(ctx)
	}
}

// Stop stops every syncer. In-flight cycles finish on their own.
func (s *SyncerSet) Stop() {
	for _, sy := range s.syncers {
		sy.Stop()
	}
}

// Statuses implements v0.StatusProvider.
func (s *SyncerSet) Statuses() []syncer.Status {
	out := make([]syncer.Status, 0, len(s.syncers))
	for _, sy := range s.syncers {
		out = append(out, sy.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Status implements v0.StatusProvider.
func (s *SyncerSet) Status(name string) (syncer.Status, bool) {
	sy, ok := s.byName[name]
	if !ok {
		return syncer.Status{}, false
	}
	return sy.Status(), true
}
