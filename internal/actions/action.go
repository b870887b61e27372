// Package actions defines the chat action model and the builtin actions.
//
// An action declares one activation rule per chat mode; the dispatcher
// evaluates the rule for the current mode to decide whether the action is
// a candidate for a turn. Execution receives the turn and returns the
// replies to send. Actions read their behavior parameters from the config
// store on every call so runtime configuration changes take effect
// without restarting.
package actions

import (
	"context"
	"fmt"
	"strings"
)

// ChatMode selects which activation rule an action applies.
type ChatMode string

const (
	// ModeNormal is the default conversational mode.
	ModeNormal ChatMode = "normal"
	// ModeFocused is the attentive mode where actions activate eagerly
	// or defer to a judge.
	ModeFocused ChatMode = "focused"
)

// ParseMode converts a user-supplied mode name. The empty string means
// normal mode.
func ParseMode(s string) (ChatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "focused", "focus":
		return ModeFocused, nil
	default:
		return "", fmt.Errorf("actions: unknown chat mode %q", s)
	}
}

// Rule is an activation rule variant. Exactly one rule is active per
// chat mode; rules never blend.
type Rule interface {
	isRule()
}

// Always activates unconditionally.
type Always struct{}

// Keyword activates when any of Words appears in the turn text.
// Matching is case-folded unless CaseSensitive is set.
type Keyword struct {
	Words         []string
	CaseSensitive bool
}

// Random activates with a fixed probability per turn.
type Random struct {
	Probability float64
}

// Judge defers activation to an LLM yes/no verdict on Prompt.
type Judge struct {
	Prompt string
}

func (Always) isRule()  {}
func (Keyword) isRule() {}
func (Random) isRule()  {}
func (Judge) isRule()   {}

// RuleName returns the rule variant name used in logs and metric labels.
func RuleName(r Rule) string {
	switch r.(type) {
	case Always:
		return "always"
	case Keyword:
		return "keyword"
	case Random:
		return "random"
	case Judge:
		return "judge"
	default:
		return "unknown"
	}
}

// Turn is one chat message considered for activation.
type Turn struct {
	// Text is the raw message text.
	Text string
	// SessionKey identifies the conversation.
	SessionKey string
	// UserID identifies the sender.
	UserID string
}

// Result is the output of an executed action.
type Result struct {
	// Replies are the messages to send, in order.
	Replies []string
	// Cached reports whether the reply was served from the response cache.
	Cached bool
}

// Action is a chat-triggered component.
type Action interface {
	// Name identifies the action in logs, metrics, and docs.
	Name() string
	// Description is a one-line summary for docs.
	Description() string
	// Rule returns the activation rule for the given mode.
	Rule(mode ChatMode) Rule
	// ParallelAllowed reports whether the action may run alongside others
	// selected for the same turn.
	ParallelAllowed() bool
	// Execute produces the action's replies for a turn.
	Execute(ctx context.Context, turn *Turn) (*Result, error)
}

// Truncate shortens s to at most max runes, appending "..." when it cuts.
// A non-positive max disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
