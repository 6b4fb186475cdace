package main

import (
	"context"
	"log"

	"github.com/fatih/color"

	"cara-compliance-be/internal/bootstrap"
	"cara-compliance-be/internal/config"
	"cara-compliance-be/internal/dto"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/database"
)

// Starter corpus so a fresh install answers something sensible in every
// module before any admin material lands.
var seedMaterial = []dto.PublishIngestKnowledgeMessage{
	{
		ModuleTag: string(assist.ModuleISO),
		SourceRef: "seed/iso27001-overview.md",
		Text: "ISO 27001 is the international standard for information security management systems (ISMS). " +
			"Certification requires a defined scope, a risk assessment process, a Statement of Applicability covering the Annex A controls, " +
			"management review, and internal audits. Evidence of control operation must be collected continuously, not reconstructed before the audit.",
	},
	{
		ModuleTag: string(assist.ModuleRisk),
		SourceRef: "seed/risk-methodology.md",
		Text: "Risk is scored as likelihood times impact on a 1-5 scale each. Scores of 1-4 are Low, 5-9 Moderate, 10-15 High, and 16-25 Critical. " +
			"High and Critical risks need a named owner, a treatment plan, and a deadline. Low risks can be accepted with periodic review.",
	},
	{
		ModuleTag: string(assist.ModuleCoach),
		SourceRef: "seed/awareness-basics.md",
		Text: "Security awareness training is required at onboarding and annually for all staff. " +
			"Topics include phishing recognition, password hygiene, clean desk policy, and incident reporting. " +
			"Completion is tracked per employee and reported to the compliance officer quarterly.",
	},
	{
		ModuleTag: string(assist.ModuleAudit),
		SourceRef: "seed/audit-preparation.md",
		Text: "Audit preparation starts with confirming the scope in writing. Maintain an evidence register mapping every in-scope control to its evidence. " +
			"Run an internal dry-run audit on a sample of controls, brief control owners on the interview format, and fix gaps before the certification body arrives.",
	},
	{
		ModuleTag: string(assist.ModulePolicy),
		SourceRef: "seed/policy-lifecycle.md",
		Text: "Policies are reviewed at least annually and after significant organizational or regulatory change. " +
			"Each policy names an owner, an approval date, and a next review date. Exceptions require documented approval from the policy owner and expire after twelve months.",
	},
	{
		ModuleTag: string(assist.ModuleSecurity),
		SourceRef: "seed/security-baseline.md",
		Text: "Baseline controls include multi-factor authentication for all remote access, full-disk encryption on laptops, " +
			"least-privilege access reviews every quarter, and a 24-hour patching window for critical vulnerabilities. " +
			"Incidents are reported to the security team within one hour of detection.",
	},
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	ctx := context.Background()

	color.Cyan("Seeding starter compliance corpus (%d documents)...", len(seedMaterial))

	for _, doc := range seedMaterial {
		count, err := container.KnowledgeService.IngestNow(ctx, &doc)
		if err != nil {
			color.Red("  ✗ %s: %v", doc.SourceRef, err)
			continue
		}
		color.Green("  ✓ %s (%d chunks)", doc.SourceRef, count)
	}

	color.Cyan("Seeding completed!")
}
