// Package commands provides anchored pattern matching and routing for
// slash commands.
package commands

import (
	"context"
)

// Pattern declares one command: an id, an anchored regular expression
// with named capture groups, and the handler that runs on a match.
type Pattern struct {
	// ID identifies the command (e.g., "help")
	ID string `json:"id"`

	// Pattern is the regular expression matched against the whole
	// input; ^ and $ anchors are added when absent
	Pattern string `json:"pattern"`

	// Examples are inputs the pattern must accept, verified at
	// registration
	Examples []string `json:"examples,omitempty"`

	// Description is a short description of what the command does
	Description string `json:"description,omitempty"`

	// Handler is the function that executes the command
	Handler Handler `json:"-"`
}

// Handler processes a command invocation.
type Handler func(ctx context.Context, inv *Invocation) (*Result, error)

// Match is the outcome of matching input text against a pattern.
type Match struct {
	// ID is the matched pattern's id
	ID string

	// Captures holds the named groups that participated in the match.
	// Optional groups that did not match are absent from the map.
	Captures map[string]string
}

// Invocation represents a matched command ready to execute.
type Invocation struct {
	// ID is the matched pattern's id
	ID string

	// Captures are the named groups from the match
	Captures map[string]string

	// RawText is the original message text
	RawText string

	// SessionKey identifies the session
	SessionKey string

	// UserID identifies the user who invoked the command
	UserID string

	// IsAdmin indicates if the user has admin privileges
	IsAdmin bool
}

// Result is the output of a command execution.
type Result struct {
	// Text is the response message to send
	Text string `json:"text,omitempty"`

	// Markdown indicates if Text should be rendered as markdown
	Markdown bool `json:"markdown,omitempty"`

	// Data holds structured data for programmatic consumption
	Data map[string]any `json:"data,omitempty"`

	// Error is set if the command refused or failed
	Error string `json:"error,omitempty"`
}
