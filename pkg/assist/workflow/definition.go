package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"cara-compliance-be/pkg/assist"
)

// Kind of answer a step accepts.
type Kind string

const (
	KindFreeText Kind = "free_text"
	KindChoice   Kind = "choice"
	KindNumeric  Kind = "numeric"
)

// Step is one question in a wizard script.
type Step struct {
	ID      string
	Prompt  string
	Kind    Kind
	Choices []string // KindChoice only
	Min     float64  // KindNumeric only
	Max     float64  // KindNumeric only
}

// Validate checks a raw user answer against the step and returns the
// canonical form to record.
func (s Step) Validate(answer string) (string, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return "", &InvalidAnswerError{StepID: s.ID, Reason: "answer must not be empty"}
	}

	switch s.Kind {
	case KindChoice:
		for _, c := range s.Choices {
			if strings.EqualFold(trimmed, c) {
				return c, nil
			}
		}
		return "", &InvalidAnswerError{
			StepID: s.ID,
			Reason: fmt.Sprintf("expected one of: %s", strings.Join(s.Choices, ", ")),
		}
	case KindNumeric:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return "", &InvalidAnswerError{StepID: s.ID, Reason: "expected a number"}
		}
		if v < s.Min || v > s.Max {
			return "", &InvalidAnswerError{
				StepID: s.ID,
				Reason: fmt.Sprintf("expected a number between %g and %g", s.Min, s.Max),
			}
		}
		return trimmed, nil
	default:
		return trimmed, nil
	}
}

// Summarizer renders the final summary once every step has an answer.
type Summarizer interface {
	Summarize(answers map[string]string) (string, error)
}

// SummarizerFunc adapts a plain function to the Summarizer interface.
type SummarizerFunc func(answers map[string]string) (string, error)

func (f SummarizerFunc) Summarize(answers map[string]string) (string, error) {
	return f(answers)
}

// Definition is a complete wizard script for one module.
type Definition struct {
	Module     assist.ModuleTag
	Steps      []Step
	Summarizer Summarizer
}
