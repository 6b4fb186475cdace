package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow/riskscore"
)

// RiskAssessmentDefinition builds the RiskBot interview. The scoring
// strategy is injected so deployments can replace the default matrix.
func RiskAssessmentDefinition(scorer riskscore.Strategy) Definition {
	return Definition{
		Module: assist.ModuleRisk,
		Steps: []Step{
			{ID: "asset", Prompt: "Which asset or process are we assessing? (e.g. customer database, payroll system)", Kind: KindFreeText},
			{ID: "threat", Prompt: "What threat or failure scenario are you worried about for this asset?", Kind: KindFreeText},
			{ID: "likelihood", Prompt: "How likely is this scenario, on a scale of 1 (rare) to 5 (almost certain)?", Kind: KindNumeric, Min: 1, Max: 5},
			{ID: "impact", Prompt: "How severe would the impact be, on a scale of 1 (negligible) to 5 (catastrophic)?", Kind: KindNumeric, Min: 1, Max: 5},
			{ID: "controls", Prompt: "What controls or mitigations are already in place?", Kind: KindFreeText},
		},
		Summarizer: SummarizerFunc(func(answers map[string]string) (string, error) {
			likelihood, err := strconv.ParseFloat(answers["likelihood"], 64)
			if err != nil {
				return "", fmt.Errorf("parse likelihood: %w", err)
			}
			impact, err := strconv.ParseFloat(answers["impact"], 64)
			if err != nil {
				return "", fmt.Errorf("parse impact: %w", err)
			}
			score, band := scorer.Score(likelihood, impact)

			var b strings.Builder
			b.WriteString("Risk Assessment Summary\n")
			fmt.Fprintf(&b, "- Asset: %s\n", answers["asset"])
			fmt.Fprintf(&b, "- Threat scenario: %s\n", answers["threat"])
			fmt.Fprintf(&b, "- Likelihood: %s/5, Impact: %s/5\n", answers["likelihood"], answers["impact"])
			fmt.Fprintf(&b, "- Existing controls: %s\n", answers["controls"])
			fmt.Fprintf(&b, "- Risk score: %g (%s)\n", score, band)
			switch band {
			case "Critical", "High":
				b.WriteString("Recommended action: treat this risk with priority. Define additional controls and assign an owner with a deadline.")
			case "Moderate":
				b.WriteString("Recommended action: plan risk treatment in the next review cycle and monitor the existing controls.")
			default:
				b.WriteString("Recommended action: accept and monitor. Re-assess if the asset or threat landscape changes.")
			}
			return b.String(), nil
		}),
	}
}

// AuditReadinessDefinition builds the AuditBuddy preparation checklist
// interview.
func AuditReadinessDefinition() Definition {
	return Definition{
		Module: assist.ModuleAudit,
		Steps: []Step{
			{ID: "framework", Prompt: "Which framework is the audit against? (ISO 27001, SOC 2, NIST CSF)", Kind: KindChoice, Choices: []string{"ISO 27001", "SOC 2", "NIST CSF"}},
			{ID: "scope", Prompt: "What is the audit scope? (e.g. whole organization, a product line, a data center)", Kind: KindFreeText},
			{ID: "audit_date", Prompt: "When is the audit scheduled? A rough date is fine.", Kind: KindFreeText},
			{ID: "evidence_status", Prompt: "How would you describe your evidence collection so far: not started, partial, or mostly complete?", Kind: KindChoice, Choices: []string{"not started", "partial", "mostly complete"}},
		},
		Summarizer: SummarizerFunc(func(answers map[string]string) (string, error) {
			var b strings.Builder
			b.WriteString("Audit Readiness Checklist\n")
			fmt.Fprintf(&b, "- Framework: %s\n", answers["framework"])
			fmt.Fprintf(&b, "- Scope: %s\n", answers["scope"])
			fmt.Fprintf(&b, "- Scheduled: %s\n", answers["audit_date"])
			fmt.Fprintf(&b, "- Evidence status: %s\n", answers["evidence_status"])
			b.WriteString("Next steps:\n")
			b.WriteString("1. Confirm the statement of scope with your auditor in writing.\n")
			switch answers["evidence_status"] {
			case "not started":
				b.WriteString("2. Start an evidence register now; collecting retroactively is the most common cause of findings.\n")
			case "partial":
				b.WriteString("2. Gap-check the evidence register against every in-scope control before the audit date.\n")
			default:
				b.WriteString("2. Run an internal dry-run audit on a sample of controls to validate the evidence.\n")
			}
			b.WriteString("3. Brief control owners on the interview format and schedule their availability.")
			return b.String(), nil
		}),
	}
}

// Definitions returns every built-in wizard keyed by module.
func Definitions(scorer riskscore.Strategy) map[assist.ModuleTag]Definition {
	return map[assist.ModuleTag]Definition{
		assist.ModuleRisk:  RiskAssessmentDefinition(scorer),
		assist.ModuleAudit: AuditReadinessDefinition(),
	}
}
