// Package compose turns routing, retrieval, and workflow results into
// the final user-facing reply.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/avast/retry-go/v4"

	"cara-compliance-be/internal/constant"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/assist/workflow"
	"cara-compliance-be/pkg/llm"
	"cara-compliance-be/pkg/store"
)

// Input carries everything the composer may need for one turn. Exactly
// one of Snippets (knowledge path) or Workflow (wizard path) drives the
// reply shape.
type Input struct {
	Module   assist.ModuleTag
	Message  string
	Snippets []store.Snippet
	Workflow *workflow.Transition
	History  []llm.Message
	Degraded bool
}

// Reply is the composed answer.
type Reply struct {
	Text         string
	Citations    []string
	FromFallback bool
}

// Composer renders replies. Wizard turns are rendered deterministically
// without touching the model; knowledge turns call the model with one
// retry on transient failure and degrade to a canned reply rather than
// erroring.
type Composer struct {
	provider llm.Provider
	logger   *log.Logger
	budget   int
}

func NewComposer(provider llm.Provider, logger *log.Logger, tokenBudget int) *Composer {
	if logger == nil {
		logger = log.Default()
	}
	if tokenBudget <= 0 {
		tokenBudget = 6000
	}
	return &Composer{provider: provider, logger: logger, budget: tokenBudget}
}

func (c *Composer) Respond(ctx context.Context, in Input) (*Reply, error) {
	if in.Workflow != nil {
		return c.wizardReply(in.Workflow), nil
	}
	return c.knowledgeReply(ctx, in)
}

func (c *Composer) wizardReply(tr *workflow.Transition) *Reply {
	var b strings.Builder
	if tr.Notice != "" {
		b.WriteString(tr.Notice)
		b.WriteString("\n\n")
	}
	switch {
	case tr.Abandoned:
		b.WriteString("No problem, I've cancelled this workflow. Ask me anything else whenever you're ready.")
	case tr.Completed:
		b.WriteString(tr.Summary)
	default:
		b.WriteString(tr.Prompt)
	}
	return &Reply{Text: b.String()}
}

func (c *Composer) knowledgeReply(ctx context.Context, in Input) (*Reply, error) {
	builder := &promptBuilder{
		module:   in.Module,
		query:    in.Message,
		snippets: in.Snippets,
		history:  in.History,
		degraded: in.Degraded,
		budget:   c.budget,
	}
	messages := builder.Build()

	answer, err := retry.DoWithData(
		func() (string, error) {
			return c.provider.Chat(ctx, messages)
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, llm.ErrUnavailable) || errors.Is(err, llm.ErrTimeout)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("compose reply: %w", ctx.Err())
		}
		c.logger.Printf("[compose] model failed after retry module=%s: %v", in.Module, err)
		return &Reply{Text: constant.FallbackReply, FromFallback: true}, nil
	}

	return c.finish(answer, in), nil
}

// finish appends citations and grounding notes to a model answer.
func (c *Composer) finish(answer string, in Input) *Reply {
	reply := &Reply{Text: strings.TrimSpace(answer)}

	if len(in.Snippets) > 0 {
		var b strings.Builder
		b.WriteString(reply.Text)
		b.WriteString("\n\nSources:\n")
		for _, s := range in.Snippets {
			fmt.Fprintf(&b, "[%d] %s\n", s.Rank, s.SourceRef)
			reply.Citations = append(reply.Citations, s.SourceRef)
		}
		reply.Text = strings.TrimRight(b.String(), "\n")
	} else if in.Degraded {
		reply.Text += "\n\n" + constant.DegradedModeNote
	} else {
		reply.Text += "\n\n" + constant.GroundingGapNote
	}

	return reply
}
