// Package dispatch decides which actions run for a chat turn.
//
// Selection happens in two steps: Selectable evaluates each action's
// activation rule for the current mode, then Pick applies the parallel
// policy to the survivors. Both steps preserve declaration order, so the
// outcome is deterministic given the same random source and judge.
package dispatch

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/pluginhost/internal/actions"
	"github.com/haasonsaas/pluginhost/internal/judge"
)

// Dispatcher evaluates activation rules against turns.
type Dispatcher struct {
	judge  judge.Judge
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDispatcher creates a dispatcher. A nil judge makes judge rules never
// activate; a nil rng falls back to a time-seeded source, while tests
// inject a fixed seed.
func NewDispatcher(j judge.Judge, rng *rand.Rand, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dispatch")
	if j == nil {
		logger.Info("no judge configured; judge rules never activate")
		j = judge.Static(false)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Dispatcher{judge: j, rng: rng, logger: logger}
}

// Selectable returns the actions whose rule for mode activates on the
// turn, in declaration order. A judge failure logs a warning and excludes
// only the affected action.
func (d *Dispatcher) Selectable(ctx context.Context, acts []actions.Action, mode actions.ChatMode, turn *actions.Turn) []actions.Action {
	var selected []actions.Action
	for _, a := range acts {
		rule := a.Rule(mode)

		var active bool
		switch r := rule.(type) {
		case actions.Always:
			active = true
		case actions.Keyword:
			active = keywordMatch(r, turn.Text)
		case actions.Random:
			active = d.roll(r.Probability)
		case actions.Judge:
			verdict, err := d.judge.Decide(ctx, r.Prompt, turn.Text)
			if err != nil {
				d.logger.Warn("judge failed; excluding action",
					"action", a.Name(),
					"error", err)
				continue
			}
			active = verdict
		}

		if active {
			selected = append(selected, a)
		}
	}
	return selected
}

// keywordMatch reports whether any keyword occurs in text as a substring.
func keywordMatch(r actions.Keyword, text string) bool {
	if !r.CaseSensitive {
		text = strings.ToLower(text)
	}
	for _, w := range r.Words {
		if w == "" {
			continue
		}
		if !r.CaseSensitive {
			w = strings.ToLower(w)
		}
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// roll draws once from the dispatcher's random source.
func (d *Dispatcher) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	d.mu.Lock()
	v := d.rng.Float64()
	d.mu.Unlock()
	return v < p
}

// ParallelAllowed reports whether two actions may run for the same turn.
func ParallelAllowed(a, b actions.Action) bool {
	return a.ParallelAllowed() && b.ParallelAllowed()
}

// Pick applies the parallel policy. When every selected action allows
// parallel execution all of them run; otherwise exactly one runs, the
// first in declaration order that disallows parallel. No randomness.
func Pick(selected []actions.Action) []actions.Action {
	for _, a := range selected {
		if !a.ParallelAllowed() {
			return []actions.Action{a}
		}
	}
	return selected
}
