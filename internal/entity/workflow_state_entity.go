package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowState is the persisted form of a wizard run. Version backs
// optimistic concurrency on updates.
type WorkflowState struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Module    string
	StepIndex int
	Answers   map[string]string
	Status    string
	Retries   int
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
