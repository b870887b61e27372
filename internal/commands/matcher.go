package commands

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Matcher matches input text against registered patterns in
// registration order. The first whole-string match wins.
type Matcher struct {
	mu       sync.RWMutex
	patterns []*compiled
	byID     map[string]*compiled
	logger   *slog.Logger
}

type compiled struct {
	pattern *Pattern
	re      *regexp.Regexp
}

// NewMatcher creates an empty matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		byID:   make(map[string]*compiled),
		logger: logger.With("component", "commands"),
	}
}

// Register compiles and appends a pattern. The expression is anchored
// with ^ and $ when absent, every example must match it, and duplicate
// ids are rejected with DuplicateCommandError.
func (m *Matcher) Register(p *Pattern) error {
	if p == nil {
		return fmt.Errorf("pattern is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("pattern id is required")
	}
	if p.Handler == nil {
		return fmt.Errorf("pattern %q: handler is required", p.ID)
	}

	expr := p.Pattern
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	if !strings.HasSuffix(expr, "$") {
		expr += "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", p.ID, err)
	}
	for _, example := range p.Examples {
		if !re.MatchString(example) {
			return fmt.Errorf("pattern %q rejects its own example %q", p.ID, example)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[p.ID]; exists {
		return &DuplicateCommandError{ID: p.ID}
	}

	c := &compiled{pattern: p, re: re}
	m.patterns = append(m.patterns, c)
	m.byID[p.ID] = c

	m.logger.Debug("registered command pattern", "id", p.ID, "examples", len(p.Examples))
	return nil
}

// Match returns the first registered pattern that matches the whole
// input, with its named captures. Optional groups that did not
// participate are absent from the capture map. Returns ErrNoMatch when
// nothing matches.
func (m *Matcher) Match(text string) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.patterns {
		loc := c.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		captures := make(map[string]string)
		for i, name := range c.re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			start, end := loc[2*i], loc[2*i+1]
			if start < 0 {
				continue
			}
			captures[name] = text[start:end]
		}
		return &Match{ID: c.pattern.ID, Captures: captures}, nil
	}

	return nil, ErrNoMatch
}

// Execute runs the handler for an already-matched invocation.
func (m *Matcher) Execute(ctx context.Context, inv *Invocation) (*Result, error) {
	if inv == nil {
		return nil, fmt.Errorf("invocation is nil")
	}

	m.mu.RLock()
	c, exists := m.byID[inv.ID]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("command %q not registered", inv.ID)
	}
	return c.pattern.Handler(ctx, inv)
}

// Patterns returns the registered patterns in registration order.
func (m *Matcher) Patterns() []*Pattern {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Pattern, len(m.patterns))
	for i, c := range m.patterns {
		out[i] = c.pattern
	}
	return out
}

// IDs returns the registered pattern ids in registration order.
func (m *Matcher) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.patterns))
	for i, c := range m.patterns {
		ids[i] = c.pattern.ID
	}
	return ids
}
