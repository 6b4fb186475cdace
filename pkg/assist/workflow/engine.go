package workflow

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exit commands abandon the wizard from any step.
var exitCommands = map[string]struct{}{
	"exit":   {},
	"quit":   {},
	"cancel": {},
	"stop":   {},
}

// Engine advances workflow instances. It holds no per-session state of
// its own, so one Engine is safe for concurrent sessions.
type Engine struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewEngine(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Resume feeds one user message to the session's workflow for the given
// definition. A missing or terminal instance starts a fresh run; the
// triggering message is treated as the request to start, not as the
// answer to the first step.
//
// A write conflict means another request moved the run in the meantime.
// The whole dispatch is repeated once against the re-read state, so the
// message is validated against whatever step is actually current and a
// run abandoned by the other writer starts fresh instead of being
// resurrected. A second conflict yields to the concurrent writer.
func (e *Engine) Resume(ctx context.Context, def Definition, sessionID uuid.UUID, message string) (*Transition, error) {
	for attempt := 0; attempt < 2; attempt++ {
		state, err := e.store.Get(ctx, sessionID, def.Module)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		if state == nil || state.Terminal() {
			return e.start(ctx, def, sessionID)
		}

		var tr *Transition
		if _, ok := exitCommands[strings.ToLower(strings.TrimSpace(message))]; ok {
			tr, err = e.write(ctx, def, state, func(s *State) { s.Status = StatusAbandoned })
		} else {
			tr, err = e.advance(ctx, def, state, message)
		}
		if err == nil {
			return tr, nil
		}
		if !errors.Is(err, ErrStateConflict) {
			return nil, err
		}
	}

	latest, err := e.store.Get(ctx, sessionID, def.Module)
	if err != nil {
		return nil, err
	}
	e.logger.Printf("[workflow] concurrent update won for session=%s module=%s", sessionID, def.Module)
	return e.transitionFor(def, latest, "This workflow was updated by another request; continuing from the latest step."), nil
}

func (e *Engine) start(ctx context.Context, def Definition, sessionID uuid.UUID) (*Transition, error) {
	now := e.now()
	fresh := &State{
		Id:        uuid.New(),
		SessionId: sessionID,
		Module:    def.Module,
		Answers:   map[string]string{},
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Put(ctx, fresh); err != nil {
		if errors.Is(err, ErrStateConflict) {
			// Someone else started it first; continue from theirs.
			latest, gerr := e.store.Get(ctx, sessionID, def.Module)
			if gerr != nil {
				return nil, gerr
			}
			return e.transitionFor(def, latest, "Resuming the workflow already in progress for this session."), nil
		}
		return nil, err
	}
	e.logger.Printf("[workflow] started module=%s session=%s", def.Module, sessionID)
	return e.transitionFor(def, fresh, ""), nil
}

func (e *Engine) advance(ctx context.Context, def Definition, state *State, message string) (*Transition, error) {
	if state.StepIndex >= len(def.Steps) {
		// Stored index ran past the script, treat as completed.
		return e.write(ctx, def, state, func(s *State) { s.Status = StatusCompleted })
	}

	step := def.Steps[state.StepIndex]
	answer, verr := step.Validate(message)
	if verr != nil {
		var invalid *InvalidAnswerError
		errors.As(verr, &invalid)
		tr, err := e.write(ctx, def, state, func(s *State) { s.Retries++ })
		if err != nil {
			return nil, err
		}
		tr.Reprompt = true
		tr.Prompt = invalid.Reason + "\n\n" + step.Prompt
		return tr, nil
	}

	return e.write(ctx, def, state, func(s *State) {
		if _, done := s.Answers[step.ID]; !done {
			s.Answers[step.ID] = answer
		}
		s.StepIndex++
		if s.StepIndex >= len(def.Steps) {
			s.Status = StatusCompleted
		}
	})
}

// write stores one mutated copy of the state. ErrStateConflict is
// passed through untouched so Resume can re-read and re-dispatch.
func (e *Engine) write(ctx context.Context, def Definition, state *State, mutate func(*State)) (*Transition, error) {
	next := state.Clone()
	mutate(next)
	next.UpdatedAt = e.now()

	if err := e.store.Put(ctx, next); err != nil {
		return nil, err
	}
	return e.transitionFor(def, next, ""), nil
}

// transitionFor renders the user-facing side of a state: the next
// prompt, or the summary when the run just completed.
func (e *Engine) transitionFor(def Definition, state *State, notice string) *Transition {
	tr := &Transition{State: state, Notice: notice}

	switch state.Status {
	case StatusAbandoned:
		tr.Abandoned = true
	case StatusCompleted:
		tr.Completed = true
		if def.Summarizer != nil {
			summary, err := def.Summarizer.Summarize(state.Answers)
			if err != nil {
				e.logger.Printf("[workflow] summarizer failed module=%s: %v", state.Module, err)
				summary = "All steps are complete, but the summary could not be generated."
			}
			tr.Summary = summary
		}
	default:
		if state.StepIndex < len(def.Steps) {
			tr.Prompt = def.Steps[state.StepIndex].Prompt
		}
	}
	return tr
}
