package workflow

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
)

// mapStore is an in-memory Store with the same optimistic concurrency
// contract as the production stores.
type mapStore struct {
	mu     sync.Mutex
	states map[string]*State
}

func newMapStore() *mapStore {
	return &mapStore{states: map[string]*State{}}
}

func key(sessionID uuid.UUID, module assist.ModuleTag) string {
	return sessionID.String() + "|" + string(module)
}

func (s *mapStore) Get(ctx context.Context, sessionID uuid.UUID, module assist.ModuleTag) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key(sessionID, module)]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *mapStore) Put(ctx context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(state.SessionId, state.Module)
	current, exists := s.states[k]
	if state.Version == 0 {
		if exists && !current.Terminal() {
			return ErrStateConflict
		}
	} else if !exists || current.Version != state.Version {
		return ErrStateConflict
	}
	saved := state.Clone()
	saved.Version++
	s.states[k] = saved
	state.Version = saved.Version
	return nil
}

func testDef() Definition {
	return Definition{
		Module: assist.ModuleRisk,
		Steps: []Step{
			{ID: "asset", Prompt: "Which asset?", Kind: KindFreeText},
			{ID: "likelihood", Prompt: "Likelihood 1-5?", Kind: KindNumeric, Min: 1, Max: 5},
			{ID: "framework", Prompt: "Which framework?", Kind: KindChoice, Choices: []string{"ISO 27001", "SOC 2"}},
		},
		Summarizer: SummarizerFunc(func(answers map[string]string) (string, error) {
			return "summary for " + answers["asset"], nil
		}),
	}
}

func testEngine(store Store) *Engine {
	return NewEngine(store, log.New(io.Discard, "", 0))
}

func TestResumeStartsFreshWithoutConsumingMessage(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()

	tr, err := e.Resume(context.Background(), testDef(), sessionID, "start a risk assessment for the payroll system")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if tr.Prompt != "Which asset?" {
		t.Errorf("Prompt = %q, want first step prompt", tr.Prompt)
	}
	if len(tr.State.Answers) != 0 {
		t.Errorf("trigger message recorded as answer: %v", tr.State.Answers)
	}
	if tr.State.Status != StatusInProgress {
		t.Errorf("Status = %s, want %s", tr.State.Status, StatusInProgress)
	}
}

func TestResumeAdvancesThroughSteps(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	if _, err := e.Resume(ctx, def, sessionID, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}

	tr, err := e.Resume(ctx, def, sessionID, "payroll system")
	if err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if tr.State.StepIndex != 1 {
		t.Errorf("StepIndex = %d, want 1", tr.State.StepIndex)
	}
	if tr.Prompt != "Likelihood 1-5?" {
		t.Errorf("Prompt = %q, want second step prompt", tr.Prompt)
	}
	if got := tr.State.Answers["asset"]; got != "payroll system" {
		t.Errorf("Answers[asset] = %q", got)
	}
}

func TestResumeRepromptsOnInvalidAnswer(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e.Resume(ctx, def, sessionID, "start")
	e.Resume(ctx, def, sessionID, "payroll system")

	tr, err := e.Resume(ctx, def, sessionID, "seven")
	if err != nil {
		t.Fatalf("Resume() error = %v, invalid answers must be handled locally", err)
	}
	if !tr.Reprompt {
		t.Error("Reprompt = false, want true")
	}
	if tr.State.StepIndex != 1 {
		t.Errorf("StepIndex advanced to %d on invalid answer", tr.State.StepIndex)
	}
	if tr.State.Retries != 1 {
		t.Errorf("Retries = %d, want 1", tr.State.Retries)
	}
	if !strings.Contains(tr.Prompt, "Likelihood 1-5?") {
		t.Errorf("reprompt %q does not repeat the step question", tr.Prompt)
	}

	// Out of range is rejected the same way, and retries accumulate.
	tr, _ = e.Resume(ctx, def, sessionID, "9")
	if tr.State.Retries != 2 {
		t.Errorf("Retries = %d, want 2", tr.State.Retries)
	}
}

func TestResumeCompletesWithSummary(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e.Resume(ctx, def, sessionID, "start")
	e.Resume(ctx, def, sessionID, "payroll system")
	e.Resume(ctx, def, sessionID, "4")
	tr, err := e.Resume(ctx, def, sessionID, "soc 2")
	if err != nil {
		t.Fatalf("final answer: %v", err)
	}
	if !tr.Completed {
		t.Fatal("Completed = false after last step")
	}
	if tr.Summary != "summary for payroll system" {
		t.Errorf("Summary = %q", tr.Summary)
	}
	// Choice answers are recorded in canonical casing.
	if got := tr.State.Answers["framework"]; got != "SOC 2" {
		t.Errorf("Answers[framework] = %q, want canonical %q", got, "SOC 2")
	}
}

func TestResumeAbandonsOnExitCommand(t *testing.T) {
	for _, cmd := range []string{"exit", "QUIT", " cancel ", "stop"} {
		t.Run(cmd, func(t *testing.T) {
			store := newMapStore()
			e := testEngine(store)
			sessionID := uuid.New()
			def := testDef()
			ctx := context.Background()

			e.Resume(ctx, def, sessionID, "start")
			tr, err := e.Resume(ctx, def, sessionID, cmd)
			if err != nil {
				t.Fatalf("Resume() error = %v", err)
			}
			if !tr.Abandoned {
				t.Fatal("Abandoned = false")
			}
			if tr.State.Status != StatusAbandoned {
				t.Errorf("Status = %s", tr.State.Status)
			}
		})
	}
}

func TestResumeAfterTerminalStartsFresh(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e.Resume(ctx, def, sessionID, "start")
	e.Resume(ctx, def, sessionID, "exit")

	tr, err := e.Resume(ctx, def, sessionID, "start again")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if tr.State.Status != StatusInProgress {
		t.Errorf("Status = %s, want fresh in_progress run", tr.State.Status)
	}
	if tr.State.StepIndex != 0 || len(tr.State.Answers) != 0 {
		t.Errorf("fresh run carries old progress: index=%d answers=%v", tr.State.StepIndex, tr.State.Answers)
	}
}

func TestStepIndexNeverDecreases(t *testing.T) {
	store := newMapStore()
	e := testEngine(store)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	last := -1
	inputs := []string{"start", "payroll", "bad", "3", "nope", "iso 27001"}
	for _, in := range inputs {
		tr, err := e.Resume(ctx, def, sessionID, in)
		if err != nil {
			t.Fatalf("Resume(%q): %v", in, err)
		}
		if tr.State.StepIndex < last {
			t.Fatalf("StepIndex decreased from %d to %d on %q", last, tr.State.StepIndex, in)
		}
		last = tr.State.StepIndex
	}
}

// conflictStore wraps mapStore and forces the first n Puts to conflict.
type conflictStore struct {
	*mapStore
	failures int
}

func (s *conflictStore) Put(ctx context.Context, state *State) error {
	if s.failures > 0 {
		s.failures--
		return ErrStateConflict
	}
	return s.mapStore.Put(ctx, state)
}

func TestResumeRetriesOnceOnConflict(t *testing.T) {
	inner := newMapStore()
	e0 := testEngine(inner)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e0.Resume(ctx, def, sessionID, "start")

	store := &conflictStore{mapStore: inner, failures: 1}
	e := testEngine(store)
	tr, err := e.Resume(ctx, def, sessionID, "payroll system")
	if err != nil {
		t.Fatalf("Resume() error = %v, want conflict absorbed by retry", err)
	}
	if tr.State.StepIndex != 1 {
		t.Errorf("StepIndex = %d, want 1 after retried write", tr.State.StepIndex)
	}
	if tr.Notice != "" {
		t.Errorf("Notice = %q, want empty when the retry succeeds", tr.Notice)
	}
}

func TestResumeYieldsToConcurrentWriter(t *testing.T) {
	inner := newMapStore()
	e0 := testEngine(inner)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e0.Resume(ctx, def, sessionID, "start")

	store := &conflictStore{mapStore: inner, failures: 2}
	e := testEngine(store)
	tr, err := e.Resume(ctx, def, sessionID, "payroll system")
	if err != nil {
		t.Fatalf("Resume() error = %v, want latest state with notice", err)
	}
	if tr.Notice == "" {
		t.Error("Notice empty, user not told about the concurrent update")
	}
	// The losing write is discarded, the stored state is untouched.
	if tr.State.StepIndex != 0 {
		t.Errorf("StepIndex = %d, want stored state's 0", tr.State.StepIndex)
	}
}

// racingStore lets a concurrent request land on the inner store just
// before the first write, so that write fails with a genuine version
// conflict against a moved state.
type racingStore struct {
	*mapStore
	once  sync.Once
	racer func()
}

func (s *racingStore) Put(ctx context.Context, state *State) error {
	s.once.Do(s.racer)
	return s.mapStore.Put(ctx, state)
}

func TestResumeDoubleSubmitDoesNotSkipStep(t *testing.T) {
	inner := newMapStore()
	e0 := testEngine(inner)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e0.Resume(ctx, def, sessionID, "start")

	// The duplicate of the same answer lands first through e0.
	store := &racingStore{mapStore: inner, racer: func() {
		if _, err := e0.Resume(ctx, def, sessionID, "payroll system"); err != nil {
			t.Fatalf("concurrent submit: %v", err)
		}
	}}
	e := testEngine(store)

	tr, err := e.Resume(ctx, def, sessionID, "payroll system")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	// The text answered step 0 already; it is not a valid likelihood, so
	// the run must hold at step 1 and ask again, not jump past it.
	if tr.State.StepIndex != 1 {
		t.Errorf("StepIndex = %d, want 1", tr.State.StepIndex)
	}
	if !tr.Reprompt {
		t.Error("Reprompt = false, duplicate answer slipped through as the next step's answer")
	}
	if _, ok := tr.State.Answers["likelihood"]; ok {
		t.Errorf("Answers[likelihood] = %q recorded from a duplicate submit", tr.State.Answers["likelihood"])
	}
	if got := tr.State.Answers["asset"]; got != "payroll system" {
		t.Errorf("Answers[asset] = %q, want the first submit's answer kept", got)
	}
	if tr.Completed {
		t.Error("Completed = true with unanswered steps")
	}
}

func TestResumeConflictWithConcurrentAbandonStartsFresh(t *testing.T) {
	inner := newMapStore()
	e0 := testEngine(inner)
	sessionID := uuid.New()
	def := testDef()
	ctx := context.Background()

	e0.Resume(ctx, def, sessionID, "start")
	e0.Resume(ctx, def, sessionID, "payroll system")

	store := &racingStore{mapStore: inner, racer: func() {
		if _, err := e0.Resume(ctx, def, sessionID, "exit"); err != nil {
			t.Fatalf("concurrent exit: %v", err)
		}
	}}
	e := testEngine(store)

	tr, err := e.Resume(ctx, def, sessionID, "3")
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	// The abandoned run stays terminal; the losing request starts over.
	if tr.State.Status != StatusInProgress {
		t.Fatalf("Status = %s, want a fresh in_progress run", tr.State.Status)
	}
	if tr.State.StepIndex != 0 || len(tr.State.Answers) != 0 {
		t.Errorf("fresh run carries old progress: index=%d answers=%v", tr.State.StepIndex, tr.State.Answers)
	}
	if tr.Prompt != "Which asset?" {
		t.Errorf("Prompt = %q, want first step prompt without consuming the message", tr.Prompt)
	}
}

func TestStepValidate(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		answer  string
		want    string
		wantErr bool
	}{
		{name: "free text trims", step: Step{ID: "a", Kind: KindFreeText}, answer: "  hello  ", want: "hello"},
		{name: "free text empty", step: Step{ID: "a", Kind: KindFreeText}, answer: "   ", wantErr: true},
		{name: "numeric in range", step: Step{ID: "n", Kind: KindNumeric, Min: 1, Max: 5}, answer: "3", want: "3"},
		{name: "numeric below range", step: Step{ID: "n", Kind: KindNumeric, Min: 1, Max: 5}, answer: "0", wantErr: true},
		{name: "numeric not a number", step: Step{ID: "n", Kind: KindNumeric, Min: 1, Max: 5}, answer: "three", wantErr: true},
		{name: "choice canonical case", step: Step{ID: "c", Kind: KindChoice, Choices: []string{"ISO 27001"}}, answer: "iso 27001", want: "ISO 27001"},
		{name: "choice unknown", step: Step{ID: "c", Kind: KindChoice, Choices: []string{"ISO 27001"}}, answer: "PCI", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.step.Validate(tt.answer)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%q) error = nil, want InvalidAnswerError", tt.answer)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%q) error = %v", tt.answer, err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}
