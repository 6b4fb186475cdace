package implementation

import (
	"context"

	"github.com/google/uuid"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/repository/contract"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow"
)

// PersistentWorkflowStore adapts the SQL workflow repository to the
// engine's Store port.
type PersistentWorkflowStore struct {
	repo contract.WorkflowStateRepository
}

func NewPersistentWorkflowStore(repo contract.WorkflowStateRepository) *PersistentWorkflowStore {
	return &PersistentWorkflowStore{repo: repo}
}

func (s *PersistentWorkflowStore) Get(ctx context.Context, sessionID uuid.UUID, module assist.ModuleTag) (*workflow.State, error) {
	e, err := s.repo.FindBySessionAndModule(ctx, sessionID, string(module))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, workflow.ErrNotFound
	}
	return stateFromEntity(e), nil
}

func (s *PersistentWorkflowStore) Put(ctx context.Context, state *workflow.State) error {
	e := stateToEntity(state)
	if err := s.repo.Save(ctx, e); err != nil {
		return err
	}
	state.Id = e.Id
	state.Version = e.Version
	return nil
}

func stateFromEntity(e *entity.WorkflowState) *workflow.State {
	answers := make(map[string]string, len(e.Answers))
	for k, v := range e.Answers {
		answers[k] = v
	}
	return &workflow.State{
		Id:        e.Id,
		SessionId: e.SessionId,
		Module:    assist.ModuleTag(e.Module),
		StepIndex: e.StepIndex,
		Answers:   answers,
		Status:    workflow.Status(e.Status),
		Retries:   e.Retries,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func stateToEntity(s *workflow.State) *entity.WorkflowState {
	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}
	return &entity.WorkflowState{
		Id:        s.Id,
		SessionId: s.SessionId,
		Module:    string(s.Module),
		StepIndex: s.StepIndex,
		Answers:   answers,
		Status:    string(s.Status),
		Retries:   s.Retries,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
