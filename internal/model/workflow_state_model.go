package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// One row per wizard run. Uniqueness of the live run per
// (session_id, module) comes from a partial index created by migrate;
// finished rows are kept as the run history.
type WorkflowState struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID         `gorm:"type:uuid;not null;index:idx_workflow_session_module"`
	Module    string            `gorm:"type:varchar(64);not null;index:idx_workflow_session_module"`
	StepIndex int               `gorm:"not null;default:0"`
	Answers   datatypes.JSONMap `gorm:"type:jsonb"`
	Status    string            `gorm:"type:varchar(16);not null;index"`
	Retries   int               `gorm:"not null;default:0"`
	Version   int64             `gorm:"not null;default:0"` // optimistic lock
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (WorkflowState) TableName() string {
	return "workflow_states"
}
