package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow"
)

// WorkflowStore keeps wizard state in process memory. Used when no
// database is configured and as the fast path for tests. Each slot
// holds the full run history for a (session, module) pair; finished
// runs stay readable until the slot expires with the cache TTL.
type WorkflowStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// runs is the ordered run history for one slot, newest last. At most
// the last run may be in progress.
type runs struct {
	items []*workflow.State
}

func (r *runs) live() *workflow.State {
	if len(r.items) == 0 {
		return nil
	}
	if last := r.items[len(r.items)-1]; !last.Terminal() {
		return last
	}
	return nil
}

func NewWorkflowStore() *WorkflowStore {
	// Default expiration of 1 hour, purge sweep every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WorkflowStore{cache: c}
}

func storeKey(sessionID uuid.UUID, module assist.ModuleTag) string {
	return sessionID.String() + "|" + string(module)
}

// Get returns the live run if one exists, otherwise the most recent
// finished run.
func (s *WorkflowStore) Get(ctx context.Context, sessionID uuid.UUID, module assist.ModuleTag) (*workflow.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, found := s.cache.Get(storeKey(sessionID, module))
	if !found {
		return nil, workflow.ErrNotFound
	}
	rs := x.(*runs)
	if len(rs.items) == 0 {
		return nil, workflow.ErrNotFound
	}
	return rs.items[len(rs.items)-1].Clone(), nil
}

// Put enforces the optimistic write contract: version zero starts a new
// run only while no run is live, other versions must match the stored
// run exactly. Terminal runs are never mutated, a conflicting write
// against one fails the same way a stale version does.
func (s *WorkflowStore) Put(ctx context.Context, state *workflow.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(state.SessionId, state.Module)
	rs := &runs{}
	if x, found := s.cache.Get(key); found {
		rs = x.(*runs)
	}

	if state.Version == 0 {
		if rs.live() != nil {
			return workflow.ErrStateConflict
		}
		saved := state.Clone()
		saved.Version = 1
		rs.items = append(rs.items, saved)
		state.Version = saved.Version
		s.cache.Set(key, rs, cache.DefaultExpiration)
		return nil
	}

	for i, item := range rs.items {
		if item.Id != state.Id {
			continue
		}
		if item.Terminal() || item.Version != state.Version {
			return workflow.ErrStateConflict
		}
		saved := state.Clone()
		saved.Version++
		rs.items[i] = saved
		state.Version = saved.Version
		s.cache.Set(key, rs, cache.DefaultExpiration)
		return nil
	}
	return workflow.ErrStateConflict
}
