package contract

import (
	"context"

	"github.com/google/uuid"

	"cara-compliance-be/internal/entity"
)

// WorkflowStateRepository keeps one row per wizard run, with at most
// one live run per (session, module) pair. Save is an optimistic
// write: Version zero inserts a new run while no live one exists, any
// other version must match the live row or the save fails with
// workflow.ErrStateConflict. Finished rows are immutable history.
type WorkflowStateRepository interface {
	FindBySessionAndModule(ctx context.Context, sessionId uuid.UUID, module string) (*entity.WorkflowState, error)
	FindActiveBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.WorkflowState, error)
	Save(ctx context.Context, state *entity.WorkflowState) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
}
