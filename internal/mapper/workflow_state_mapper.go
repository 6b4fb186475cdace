package mapper

import (
	"fmt"

	"gorm.io/datatypes"

	"cara-compliance-be/internal/entity"
	"cara-compliance-be/internal/model"
)

type WorkflowStateMapper struct{}

func NewWorkflowStateMapper() *WorkflowStateMapper {
	return &WorkflowStateMapper{}
}

func (m *WorkflowStateMapper) ToEntity(s *model.WorkflowState) *entity.WorkflowState {
	if s == nil {
		return nil
	}

	answers := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = fmt.Sprint(v)
	}

	return &entity.WorkflowState{
		Id:        s.Id,
		SessionId: s.SessionId,
		Module:    s.Module,
		StepIndex: s.StepIndex,
		Answers:   answers,
		Status:    s.Status,
		Retries:   s.Retries,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *WorkflowStateMapper) ToModel(s *entity.WorkflowState) *model.WorkflowState {
	if s == nil {
		return nil
	}

	answers := make(datatypes.JSONMap, len(s.Answers))
	for k, v := range s.Answers {
		answers[k] = v
	}

	return &model.WorkflowState{
		Id:        s.Id,
		SessionId: s.SessionId,
		Module:    s.Module,
		StepIndex: s.StepIndex,
		Answers:   answers,
		Status:    s.Status,
		Retries:   s.Retries,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
