package compose

import (
	"fmt"
	"strings"

	"cara-compliance-be/internal/constant"
	"cara-compliance-be/pkg/assist"
	"cara-compliance-be/pkg/llm"
	"cara-compliance-be/pkg/store"
)

// estimateTokens approximates the model's token count from character
// length. Four characters per token is a safe overestimate for English
// prose.
func estimateTokens(text string) int {
	return len(text)/4 + 1
}

// promptBuilder assembles the message list for one knowledge answer.
type promptBuilder struct {
	module   assist.ModuleTag
	query    string
	snippets []store.Snippet
	history  []llm.Message
	degraded bool // retrieval unavailable, answer from general knowledge
	budget   int  // token budget for the whole message list
}

// Build returns the system, trimmed history, and user messages. History
// is dropped oldest-first until the list fits the budget; the system
// prompt, references, and current query are never dropped. A degraded
// turn has no grounding to specialize on, so it uses the general
// preamble instead of the module persona.
func (b *promptBuilder) Build() []llm.Message {
	preamble := constant.PreambleFor(b.module)
	if b.degraded {
		preamble = constant.BasePreamble
	}
	system := llm.Message{Role: constant.ChatMessageRoleSystem, Content: preamble}
	user := llm.Message{Role: constant.ChatMessageRoleUser, Content: b.buildUserContent()}

	fixed := estimateTokens(system.Content) + estimateTokens(user.Content)
	history := b.trimHistory(b.budget - fixed)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, system)
	messages = append(messages, history...)
	messages = append(messages, user)
	return messages
}

func (b *promptBuilder) buildUserContent() string {
	var prompt strings.Builder

	if len(b.snippets) > 0 {
		prompt.WriteString("<reference_material>\n")
		for _, s := range b.snippets {
			fmt.Fprintf(&prompt, "[%d] (%s)\n%s\n\n", s.Rank, s.SourceRef, s.Excerpt)
		}
		prompt.WriteString("</reference_material>\n\n")
	}

	prompt.WriteString("<question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</question>")
	return prompt.String()
}

func (b *promptBuilder) trimHistory(budget int) []llm.Message {
	if budget <= 0 {
		return nil
	}
	total := 0
	for _, m := range b.history {
		total += estimateTokens(m.Content)
	}
	history := b.history
	for len(history) > 0 && total > budget {
		total -= estimateTokens(history[0].Content)
		history = history[1:]
	}
	return history
}
