// Package router maps an incoming chat message to exactly one assistant
// module. Routing is pure string work: no network, no storage, no errors.
package router

import (
	"log"
	"strings"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow"
)

// Rule binds a module to the keywords that select it.
// Rules are evaluated in declaration order - ORDER MATTERS, the first
// matching rule wins regardless of how many keywords later rules match.
type Rule struct {
	Module   assist.ModuleTag
	Keywords []string
}

// Ruleset is an ordered rule list with a fallback module for messages
// that match nothing.
type Ruleset struct {
	Rules    []Rule
	Fallback assist.ModuleTag
}

// DefaultRuleset returns the built-in module routing table.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Rules: []Rule{
			{Module: assist.ModuleISO, Keywords: []string{"iso", "27001", "isms", "annex a", "certification", "statement of applicability"}},
			{Module: assist.ModuleRisk, Keywords: []string{"risk", "threat", "likelihood", "impact", "vulnerability", "risk assessment"}},
			{Module: assist.ModuleCoach, Keywords: []string{"training", "awareness", "onboarding", "coach", "learn", "quiz"}},
			{Module: assist.ModuleAudit, Keywords: []string{"audit", "auditor", "evidence", "readiness", "nonconformity", "finding"}},
			{Module: assist.ModulePolicy, Keywords: []string{"policy", "procedure", "sop", "guideline", "acceptable use"}},
			{Module: assist.ModuleSecurity, Keywords: []string{"security", "password", "phishing", "encryption", "mfa", "firewall"}},
		},
		Fallback: assist.ModuleGeneral,
	}
}

// Router decides which module handles a message.
type Router struct {
	rules  Ruleset
	logger *log.Logger
}

func New(rules Ruleset, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{rules: rules, logger: logger}
}

// Route picks the module for a message. A session with a workflow still
// in progress is pinned to that workflow's module unconditionally, so a
// mid-wizard answer like "5" never leaks to keyword matching.
func (r *Router) Route(message string, prior *workflow.State) assist.ModuleTag {
	if prior != nil && prior.Status == workflow.StatusInProgress {
		r.logger.Printf("[router] session pinned to in-progress workflow module=%s", prior.Module)
		return prior.Module
	}

	lower := strings.ToLower(message)
	for _, rule := range r.rules.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				r.logger.Printf("[router] matched module=%s keyword=%q", rule.Module, kw)
				return rule.Module
			}
		}
	}

	return r.rules.Fallback
}
