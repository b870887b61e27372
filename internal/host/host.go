// Package host runs the interactive demo loop: it resolves the builtin
// component set against configuration, routes slash-prefixed input through
// the command matcher under the configured timeout, and hands ordinary chat
// turns to the action dispatcher.
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/pluginhost/internal/actions"
	"github.com/haasonsaas/pluginhost/internal/commands"
	"github.com/haasonsaas/pluginhost/internal/components"
	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/dispatch"
	"github.com/haasonsaas/pluginhost/internal/judge"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

// quitCommand exits the loop. It is host surface, not a registered
// pattern, so it works even when every command component is disabled.
const quitCommand = "/quit"

// localUser identifies the interactive user. The local operator is
// treated as admin so /config is usable from the terminal.
const localUser = "local"

// Options configures a Host. Store is required; everything else has a
// sensible default.
type Options struct {
	// Store supplies enable flags, behavior parameters, and the command
	// timeout.
	Store *config.Store

	// Mode is the chat mode actions are asked for rules in. Empty means
	// normal.
	Mode actions.ChatMode

	// Judge backs judge activation rules. Nil means those rules never
	// activate.
	Judge judge.Judge

	// Rng drives random activation and reply choice. Nil seeds from the
	// clock; inject a seeded source for reproducible sessions.
	Rng *rand.Rand

	// Metrics records turn outcomes. Nil records nothing.
	Metrics *observability.Metrics

	// Registry overrides the builtin component set. Nil uses
	// BuiltinRegistry.
	Registry *components.Registry

	// Logger receives host events. Nil uses slog.Default.
	Logger *slog.Logger

	// In and Out are the interactive surfaces. Nil means stdin/stdout.
	In  io.Reader
	Out io.Writer
}

// Host is one interactive session over a resolved component set.
type Host struct {
	store      *config.Store
	mode       actions.ChatMode
	matcher    *commands.Matcher
	dispatcher *dispatch.Dispatcher
	acts       []actions.Action
	registry   *components.Registry
	metrics    *observability.Metrics
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
	sessionID  string
}

// New resolves components against the store and wires the matcher and
// dispatcher. Components disabled by configuration are logged and skipped.
func New(opts Options) (*Host, error) {
	if opts.Store == nil {
		return nil, errors.New("host: config store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "host")

	mode := opts.Mode
	if mode == "" {
		mode = actions.ModeNormal
	}

	rng := opts.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	registry := opts.Registry
	if registry == nil {
		registry = BuiltinRegistry(opts.Store, rng, opts.Metrics, logger)
	}

	matcher := commands.NewMatcher(logger)
	var acts []actions.Action
	for _, r := range registry.Resolve(opts.Store) {
		switch v := r.Instance.(type) {
		case actions.Action:
			acts = append(acts, v)
		case *commands.Pattern:
			if err := matcher.Register(v); err != nil {
				return nil, fmt.Errorf("register command %q: %w", r.Name, err)
			}
		default:
			logger.Warn("component produced an unsupported instance", "name", r.Name)
		}
	}
	for _, d := range registry.Diagnostics() {
		logger.Info("component skipped", "name", d.Component, "reason", d.Reason)
	}

	return &Host{
		store:      opts.Store,
		mode:       mode,
		matcher:    matcher,
		dispatcher: dispatch.NewDispatcher(opts.Judge, rng, logger),
		acts:       acts,
		registry:   registry,
		metrics:    opts.Metrics,
		logger:     logger,
		in:         in,
		out:        out,
		sessionID:  uuid.NewString(),
	}, nil
}

// SessionID returns the id assigned to this session.
func (h *Host) SessionID() string { return h.sessionID }

// Run reads lines until /quit, EOF, or context cancellation. Empty lines
// are ignored; slash-prefixed lines go to the matcher, everything else is
// a chat turn.
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info("session started",
		"session", h.sessionID,
		"mode", string(h.mode),
		"actions", len(h.acts),
		"commands", len(h.matcher.IDs()),
	)
	fmt.Fprintf(h.out, "session %s (mode %s)\n", h.sessionID, h.mode)
	fmt.Fprintf(h.out, "type /help for commands, %s to exit\n", quitCommand)

	scanner := bufio.NewScanner(h.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == quitCommand:
			fmt.Fprintln(h.out, "bye")
			h.logger.Info("session ended", "session", h.sessionID)
			return nil
		case strings.HasPrefix(line, "/"):
			h.handleCommand(ctx, line)
		default:
			h.handleChat(ctx, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// handleCommand matches and executes one slash command under the
// configured timeout.
func (h *Host) handleCommand(ctx context.Context, text string) {
	start := time.Now()
	defer func() { h.metrics.ObserveTurn("command", time.Since(start).Seconds()) }()

	match, err := h.matcher.Match(text)
	if err != nil {
		h.metrics.CommandUnmatched()
		h.logger.Debug("no command matched", "text", text)
		fmt.Fprintln(h.out, "unknown command; /help lists available commands")
		return
	}
	h.metrics.CommandMatched(match.ID)

	timeout := time.Duration(h.store.GetInt("commands.command_timeout", 30)) * time.Second
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := h.matcher.Execute(cmdCtx, &commands.Invocation{
		ID:         match.ID,
		Captures:   match.Captures,
		RawText:    text,
		SessionKey: h.sessionID,
		UserID:     localUser,
		IsAdmin:    true,
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("command timed out", "id", match.ID, "timeout", timeout)
		fmt.Fprintf(h.out, "command timed out after %s\n", timeout)
	case err != nil:
		h.logger.Error("command failed", "id", match.ID, "error", err)
		fmt.Fprintln(h.out, "command failed; see logs")
	case res == nil:
		// A handler returning (nil, nil) has nothing to say.
	case res.Error != "":
		fmt.Fprintln(h.out, res.Error)
	default:
		fmt.Fprintln(h.out, res.Text)
	}
}

// handleChat runs the dispatcher over the active actions and executes the
// picked set in selection order.
func (h *Host) handleChat(ctx context.Context, text string) {
	start := time.Now()
	defer func() { h.metrics.ObserveTurn("chat", time.Since(start).Seconds()) }()

	turn := &actions.Turn{Text: text, SessionKey: h.sessionID, UserID: localUser}
	picked := dispatch.Pick(h.dispatcher.Selectable(ctx, h.acts, h.mode, turn))
	if len(picked) == 0 {
		h.logger.Debug("no action activated", "session", h.sessionID)
		return
	}

	for _, a := range picked {
		h.metrics.ActionSelected(a.Name(), actions.RuleName(a.Rule(h.mode)))
		res, err := a.Execute(ctx, turn)
		if err != nil {
			h.logger.Error("action failed", "action", a.Name(), "error", err)
			continue
		}
		for _, reply := range res.Replies {
			fmt.Fprintln(h.out, reply)
		}
	}
}
