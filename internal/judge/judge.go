// Package judge decides whether an activation rule applies to a chat turn.
//
// A judge receives the rule prompt configured on an action together with
// the raw user input and returns a yes/no verdict. Implementations backed
// by LLM providers live in this package alongside trivial judges used for
// composition and testing.
package judge

import (
	"context"
	"strings"
)

// Judge renders a yes/no verdict on whether a rule prompt applies to input.
type Judge interface {
	// Decide reports whether the rule described by prompt applies to input.
	Decide(ctx context.Context, prompt, input string) (bool, error)
}

// Func adapts a plain function to the Judge interface.
type Func func(ctx context.Context, prompt, input string) (bool, error)

// Decide implements Judge.
func (f Func) Decide(ctx context.Context, prompt, input string) (bool, error) {
	return f(ctx, prompt, input)
}

// Static returns a judge that always renders the same verdict.
func Static(verdict bool) Judge {
	return Func(func(context.Context, string, string) (bool, error) {
		return verdict, nil
	})
}

// decisionInstruction frames the rule prompt so the model answers with a
// single YES or NO token instead of prose.
const decisionInstruction = "You are an activation judge for a chat plugin. " +
	"Apply the rule below to the user input and answer with exactly one word: YES or NO.\n\nRule:\n"

func decisionPrompt(prompt string) string {
	return decisionInstruction + prompt
}

// affirmative reports whether a model reply counts as a YES verdict.
// Replies are trimmed and case-folded before the prefix check so that
// answers like "yes." or " Yes, it applies" still count.
func affirmative(reply string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(reply)), "YES")
}
