package workflow

import (
	"context"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
)

// Store persists workflow runs. Put performs an optimistic write: a
// new run (Version zero) is accepted only while no run is live, and an
// update must carry the version the caller read, otherwise Put returns
// ErrStateConflict. Finished runs are never written again; Get returns
// the live run, or the most recent finished one. Implementations bump
// Version on success.
type Store interface {
	Get(ctx context.Context, sessionID uuid.UUID, module assist.ModuleTag) (*State, error)
	Put(ctx context.Context, state *State) error
}
