package services

import (
	"context"
	"sync"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
)

// Command is a mutation that knows how to undo its own optimistic edit.
type Command interface {
	Apply(snapshot *Snapshot)
	Revert(snapshot *Snapshot)
	Commit(ctx context.Context, store ChallengeStore) error
}

// StoreCommand writes through the store without touching the cached copy
// first; the cache catches up on the refetch that follows.
type StoreCommand func(ctx context.Context, store ChallengeStore) error

func (command StoreCommand) Apply(*Snapshot)  {}
func (command StoreCommand) Revert(*Snapshot) {}

func (command StoreCommand) Commit(ctx context.Context, store ChallengeStore) error {
	return command(ctx, store)
}

// SnapshotCache keeps the freshest snapshot and runs commands against it.
// generation changes on every edit of the cached copy; a fetch that started
// before the latest edit is never installed over it.
type SnapshotCache struct {
	store ChallengeStore

	mu         sync.RWMutex
	current    Snapshot
	loaded     bool
	generation uint64
}

func NewSnapshotCache(store ChallengeStore) *SnapshotCache {
	return &SnapshotCache{store: store}
}

// Snapshot returns a private copy of the cached snapshot, loading it on first use.
func (cache *SnapshotCache) Snapshot(ctx context.Context) (Snapshot, error) {
	cache.mu.RLock()
	if cache.loaded {
		snapshot := cache.current.Clone()
		cache.mu.RUnlock()
		return snapshot, nil
	}
	cache.mu.RUnlock()
	return cache.Refresh(ctx)
}

// Refresh refetches from the store. When the cache changed while the fetch
// was running, the fetched copy is stale: the cached snapshot wins, or, after
// an Invalidate, the fetch is returned to the caller without being installed.
func (cache *SnapshotCache) Refresh(ctx context.Context) (Snapshot, error) {
	cache.mu.RLock()
	started := cache.generation
	cache.mu.RUnlock()

	snapshot, err := cache.store.FetchSnapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.generation != started {
		if cache.loaded {
			return cache.current.Clone(), nil
		}
		return snapshot, nil
	}
	cache.current = snapshot
	cache.loaded = true
	cache.generation++
	return snapshot.Clone(), nil
}

// Invalidate drops the cached copy after writes that bypass Execute.
func (cache *SnapshotCache) Invalidate() {
	cache.mu.Lock()
	cache.loaded = false
	cache.current = Snapshot{}
	cache.generation++
	cache.mu.Unlock()
}

// Execute applies command optimistically, commits it and refreshes. On a
// failed commit the command's own inverse restores the cached state and the
// commit error is returned with the restored snapshot.
func (cache *SnapshotCache) Execute(ctx context.Context, command Command) (Snapshot, error) {
	if _, err := cache.Snapshot(ctx); err != nil {
		return Snapshot{}, err
	}

	cache.mu.Lock()
	command.Apply(&cache.current)
	cache.generation++
	cache.mu.Unlock()

	if err := command.Commit(ctx, cache.store); err != nil {
		cache.mu.Lock()
		command.Revert(&cache.current)
		cache.generation++
		restored := cache.current.Clone()
		cache.mu.Unlock()
		logger.Warn("mutation rolled back", "err", err)
		return restored, err
	}

	snapshot, err := cache.Refresh(ctx)
	if err != nil {
		logger.Warn("refresh after mutation failed, keeping local state", "err", err)
		cache.mu.RLock()
		snapshot = cache.current.Clone()
		cache.mu.RUnlock()
	}
	return snapshot, nil
}
