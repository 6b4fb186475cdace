package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/mapper"
	"cara-compliance-be/internal/model"
	"cara-compliance-be/internal/repository/contract"
	"cara-compliance-be/pkg/assist/workflow"
)

type WorkflowStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowStateMapper
}

func NewWorkflowStateRepository(db *gorm.DB) contract.WorkflowStateRepository {
	return &WorkflowStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowStateMapper(),
	}
}

// FindBySessionAndModule returns the live run when one exists,
// otherwise the most recent finished run. Older rows stay behind as
// the run history.
func (r *WorkflowStateRepositoryImpl) FindBySessionAndModule(ctx context.Context, sessionId uuid.UUID, module string) (*entity.WorkflowState, error) {
	var m model.WorkflowState
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND module = ?", sessionId, module).
		Order("CASE WHEN status = 'in_progress' THEN 0 ELSE 1 END, created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkflowStateRepositoryImpl) FindActiveBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.WorkflowState, error) {
	var models []*model.WorkflowState
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionId, string(workflow.StatusInProgress)).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.WorkflowState, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// Save writes one workflow run with optimistic locking. Version zero
// inserts a new row; the partial unique index on live runs keeps a
// single in_progress row per (session_id, module), while finished rows
// accumulate as the immutable run history. Updates only ever touch the
// live row, so a completed or abandoned run can never be written again.
func (r *WorkflowStateRepositoryImpl) Save(ctx context.Context, state *entity.WorkflowState) error {
	m := r.mapper.ToModel(state)

	if state.Version == 0 {
		return r.insertFresh(ctx, m, state)
	}

	res := r.db.WithContext(ctx).
		Model(&model.WorkflowState{}).
		Where("id = ? AND version = ? AND status = ?", m.Id, m.Version, string(workflow.StatusInProgress)).
		Updates(map[string]interface{}{
			"step_index": m.StepIndex,
			"answers":    m.Answers,
			"status":     m.Status,
			"retries":    m.Retries,
			"version":    m.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.ErrStateConflict
	}
	state.Version = m.Version + 1
	return nil
}

func (r *WorkflowStateRepositoryImpl) insertFresh(ctx context.Context, m *model.WorkflowState, state *entity.WorkflowState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live model.WorkflowState
		err := tx.Where("session_id = ? AND module = ? AND status = ?",
			m.SessionId, m.Module, string(workflow.StatusInProgress)).
			First(&live).Error
		switch {
		case err == nil:
			// A live run already exists, the fresh insert loses.
			return workflow.ErrStateConflict
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		m.Version = 1
		if cerr := tx.Create(m).Error; cerr != nil {
			return cerr
		}
		state.Id = m.Id
		state.Version = m.Version
		return nil
	})
}

func (r *WorkflowStateRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.WorkflowState{}).Error
}
