package router

import (
	"io"
	"log"
	"testing"

	"github.com/google/uuid"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow"
)

func testRouter() *Router {
	return New(DefaultRuleset(), log.New(io.Discard, "", 0))
}

func TestRouteKeywords(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    assist.ModuleTag
	}{
		{
			name:    "iso keyword",
			message: "How do I prepare for ISO 27001 certification?",
			want:    assist.ModuleISO,
		},
		{
			name:    "risk keyword",
			message: "I want to assess the risk of our payroll system",
			want:    assist.ModuleRisk,
		},
		{
			name:    "training keyword",
			message: "Can you give me a quick training on data handling?",
			want:    assist.ModuleCoach,
		},
		{
			name:    "audit keyword",
			message: "What evidence does the auditor usually ask for?",
			want:    assist.ModuleAudit,
		},
		{
			name:    "policy keyword",
			message: "Where can I find the acceptable use policy?",
			want:    assist.ModulePolicy,
		},
		{
			name:    "security keyword",
			message: "Should we enforce MFA for contractors?",
			want:    assist.ModuleSecurity,
		},
		{
			name:    "cross module priority goes to earliest rule",
			message: "Does ISO 27001 require a risk assessment policy?",
			want:    assist.ModuleISO,
		},
		{
			name:    "case insensitive",
			message: "RISK register template please",
			want:    assist.ModuleRisk,
		},
		{
			name:    "no keyword falls back to general",
			message: "Hello, what can you help me with?",
			want:    assist.ModuleGeneral,
		},
		{
			name:    "empty message falls back to general",
			message: "",
			want:    assist.ModuleGeneral,
		},
	}

	r := testRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Route(tt.message, nil)
			if got != tt.want {
				t.Errorf("Route(%q) = %s, want %s", tt.message, got, tt.want)
			}
		})
	}
}

func TestRoutePinsInProgressWorkflow(t *testing.T) {
	r := testRouter()
	prior := &workflow.State{
		SessionId: uuid.New(),
		Module:    assist.ModuleRisk,
		Status:    workflow.StatusInProgress,
	}

	// A numeric wizard answer must not leak into keyword routing.
	if got := r.Route("5", prior); got != assist.ModuleRisk {
		t.Errorf("Route with in-progress workflow = %s, want %s", got, assist.ModuleRisk)
	}
	// Even a message full of other modules' keywords stays pinned.
	if got := r.Route("tell me about ISO 27001 policy audits", prior); got != assist.ModuleRisk {
		t.Errorf("Route with in-progress workflow = %s, want %s", got, assist.ModuleRisk)
	}
}

func TestRouteIgnoresTerminalWorkflow(t *testing.T) {
	r := testRouter()
	for _, status := range []workflow.Status{workflow.StatusCompleted, workflow.StatusAbandoned} {
		prior := &workflow.State{Module: assist.ModuleAudit, Status: status}
		if got := r.Route("what is the password policy?", prior); got != assist.ModulePolicy {
			t.Errorf("Route with %s workflow = %s, want %s", status, got, assist.ModulePolicy)
		}
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	r := testRouter()
	const msg = "risk and audit and policy all at once"
	first := r.Route(msg, nil)
	for i := 0; i < 10; i++ {
		if got := r.Route(msg, nil); got != first {
			t.Fatalf("Route not deterministic: got %s then %s", first, got)
		}
	}
}
