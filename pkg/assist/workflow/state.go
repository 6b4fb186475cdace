// Package workflow runs multi-turn guided conversations ("wizards") such
// as the risk assessment interview. State is externalized behind the
// Store port so the engine itself stays stateless.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
)

// Status of a workflow instance.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// State is one workflow instance for one chat session. StepIndex only
// moves forward; Version guards compare-and-swap writes in the store.
type State struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Module    assist.ModuleTag
	StepIndex int
	Answers   map[string]string
	Status    Status
	Retries   int
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the instance can no longer advance.
func (s *State) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}

// Clone deep-copies the state so retried writes never alias the original
// answers map.
func (s *State) Clone() *State {
	cp := *s
	cp.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

// Transition is the outcome of feeding one message to the engine.
type Transition struct {
	State     *State
	Prompt    string // next question, empty when terminal
	Reprompt  bool   // true when the answer was rejected and the step repeats
	Completed bool
	Abandoned bool
	Summary   string // set only on completion
	Notice    string // surfaced to the user, e.g. after a concurrent overwrite
}
