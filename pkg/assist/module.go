// Package assist holds the module taxonomy shared by the router,
// retrieval pipeline, workflow engine and response composer.
package assist

// ModuleTag identifies one of the specialized assistant modules.
type ModuleTag string

const (
	ModuleGeneral  ModuleTag = "general"
	ModuleISO      ModuleTag = "iso_bot"
	ModuleRisk     ModuleTag = "risk_bot"
	ModuleCoach    ModuleTag = "compliance_coach"
	ModuleAudit    ModuleTag = "audit_buddy"
	ModulePolicy   ModuleTag = "policy_navigator"
	ModuleSecurity ModuleTag = "security_advisor"
)

// ModuleInfo describes one module for the catalog endpoint.
type ModuleInfo struct {
	Tag         ModuleTag `json:"tag"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Wizard      bool      `json:"wizard"`
}

// Catalog returns all modules in declared priority order.
func Catalog() []ModuleInfo {
	return []ModuleInfo{
		{Tag: ModuleISO, Name: "ISO Bot", Description: "Automates ISO 27001 FAQs, control help, and evidence collection."},
		{Tag: ModuleRisk, Name: "RiskBot", Description: "Conversational risk assessment wizard.", Wizard: true},
		{Tag: ModuleCoach, Name: "Compliance Coach", Description: "Micro-training, reminders, and policy query support."},
		{Tag: ModuleAudit, Name: "AuditBuddy", Description: "Helps orgs get ready for audits by simulating Q&A or fetching documents.", Wizard: true},
		{Tag: ModulePolicy, Name: "Policy Navigator", Description: "Helps users find and understand organizational policies."},
		{Tag: ModuleSecurity, Name: "Security Advisor", Description: "Provides security best practices and guidance."},
		{Tag: ModuleGeneral, Name: "General ComplianceBot", Description: "General governance, risk, and compliance Q&A."},
	}
}

// IsWizard reports whether the module runs a multi-turn workflow.
func (t ModuleTag) IsWizard() bool {
	return t == ModuleRisk || t == ModuleAudit
}

// Valid reports whether the tag is a known module.
func (t ModuleTag) Valid() bool {
	for _, m := range Catalog() {
		if m.Tag == t {
			return true
		}
	}
	return false
}
