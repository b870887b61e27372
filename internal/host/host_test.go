package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/haasonsaas/pluginhost/internal/actions"
	"github.com/haasonsaas/pluginhost/internal/commands"
	"github.com/haasonsaas/pluginhost/internal/components"
	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *config.Store {
	t.Helper()
	return config.NewStore(config.DefaultSchema(), discardLogger(), config.DefaultReadOnlyKeys...)
}

// runScript drives one session over scripted input and returns the output.
func runScript(t *testing.T, opts Options, script string) string {
	t.Helper()
	if opts.Store == nil {
		opts.Store = testStore(t)
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	var out bytes.Buffer
	opts.In = strings.NewReader(script)
	opts.Out = &out

	h, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := h.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

// scriptedAction is a deterministic action for loop tests.
type scriptedAction struct {
	name     string
	rule     actions.Rule
	parallel bool
	replies  []string
	execErr  error
	calls    int
}

func (a *scriptedAction) Name() string                       { return a.name }
func (a *scriptedAction) Description() string                { return "scripted test action" }
func (a *scriptedAction) Rule(actions.ChatMode) actions.Rule { return a.rule }
func (a *scriptedAction) ParallelAllowed() bool              { return a.parallel }

func (a *scriptedAction) Execute(ctx context.Context, turn *actions.Turn) (*actions.Result, error) {
	a.calls++
	if a.execErr != nil {
		return nil, a.execErr
	}
	return &actions.Result{Replies: a.replies}, nil
}

// fixedRegistry wraps ready-made instances so tests control exactly what
// the host resolves.
func fixedRegistry(t *testing.T, acts []actions.Action, patterns []*commands.Pattern) *components.Registry {
	t.Helper()
	reg := components.NewRegistry(discardLogger())
	for _, a := range acts {
		a := a
		err := reg.Register(components.Descriptor{
			Name: a.Name(),
			Kind: components.KindAction,
			New:  func() any { return a },
		})
		if err != nil {
			t.Fatalf("register %s: %v", a.Name(), err)
		}
	}
	for _, p := range patterns {
		p := p
		err := reg.Register(components.Descriptor{
			Name: p.ID,
			Kind: components.KindCommand,
			New:  func() any { return p },
		})
		if err != nil {
			t.Fatalf("register %s: %v", p.ID, err)
		}
	}
	return reg
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New() accepted a nil store")
	}
}

func TestRun_QuitExits(t *testing.T) {
	out := runScript(t, Options{}, "/quit\n")
	if !strings.Contains(out, "bye") {
		t.Errorf("missing farewell, output: %q", out)
	}
	if !strings.Contains(out, "session ") {
		t.Errorf("missing session banner, output: %q", out)
	}
}

func TestRun_EOFExits(t *testing.T) {
	runScript(t, Options{}, "")
}

func TestRun_BlankLinesIgnored(t *testing.T) {
	out := runScript(t, Options{}, "\n   \n/quit\n")
	if strings.Contains(out, "unknown command") {
		t.Errorf("blank line treated as input, output: %q", out)
	}
}

func TestRun_HelpCommand(t *testing.T) {
	out := runScript(t, Options{}, "/help\n/quit\n")
	if !strings.Contains(out, "Plugin Help") {
		t.Errorf("help output missing, output: %q", out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	out := runScript(t, Options{Metrics: m}, "/frobnicate\n/quit\n")

	if !strings.Contains(out, "unknown command") {
		t.Errorf("missing unknown-command notice, output: %q", out)
	}
	if got := testutil.ToFloat64(m.CommandMisses); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func TestRun_ConfigRoundTrip(t *testing.T) {
	store := testStore(t)
	if _, err := store.Set("features.enable_config_command", "true"); err != nil {
		t.Fatalf("enable config command: %v", err)
	}

	out := runScript(t, Options{Store: store},
		"/config set plugin.debug_mode true\n/config get plugin.debug_mode\n/quit\n")

	if !strings.Contains(out, "Configuration updated") {
		t.Errorf("set output missing, output: %q", out)
	}
	if !strings.Contains(out, "Value: true") {
		t.Errorf("get output missing, output: %q", out)
	}
	if !store.GetBool("plugin.debug_mode", false) {
		t.Error("store value not updated")
	}
}

func TestRun_ChatTurnActivatesAction(t *testing.T) {
	echo := &scriptedAction{
		name:    "echo",
		rule:    actions.Keyword{Words: []string{"ping"}},
		replies: []string{"pong"},
	}
	m := observability.NewMetrics(prometheus.NewRegistry())
	reg := fixedRegistry(t, []actions.Action{echo}, nil)

	out := runScript(t, Options{Registry: reg, Metrics: m}, "ping\n/quit\n")

	if !strings.Contains(out, "pong") {
		t.Errorf("missing action reply, output: %q", out)
	}
	if echo.calls != 1 {
		t.Errorf("Execute calls = %d, want 1", echo.calls)
	}
	if got := testutil.ToFloat64(m.ActionSelections.WithLabelValues("echo", "keyword")); got != 1 {
		t.Errorf("selection counter = %v, want 1", got)
	}
}

func TestRun_ChatTurnWithoutActivation(t *testing.T) {
	echo := &scriptedAction{
		name:    "echo",
		rule:    actions.Keyword{Words: []string{"ping"}},
		replies: []string{"pong"},
	}
	reg := fixedRegistry(t, []actions.Action{echo}, nil)

	out := runScript(t, Options{Registry: reg}, "a quiet message\n/quit\n")

	if strings.Contains(out, "pong") {
		t.Errorf("action replied without a keyword, output: %q", out)
	}
	if echo.calls != 0 {
		t.Errorf("Execute calls = %d, want 0", echo.calls)
	}
}

func TestRun_NonParallelActionWinsAlone(t *testing.T) {
	loud := &scriptedAction{
		name:     "loud",
		rule:     actions.Keyword{Words: []string{"ping"}},
		parallel: true,
		replies:  []string{"from-loud"},
	}
	solo := &scriptedAction{
		name:    "solo",
		rule:    actions.Keyword{Words: []string{"ping"}},
		replies: []string{"from-solo"},
	}
	reg := fixedRegistry(t, []actions.Action{loud, solo}, nil)

	out := runScript(t, Options{Registry: reg}, "ping\n/quit\n")

	if !strings.Contains(out, "from-solo") {
		t.Errorf("non-parallel action did not run, output: %q", out)
	}
	if strings.Contains(out, "from-loud") {
		t.Errorf("parallel action ran alongside a non-parallel one, output: %q", out)
	}
}

func TestRun_ActionErrorIsContained(t *testing.T) {
	// Both parallel so both get picked.
	bad := &scriptedAction{
		name:     "bad",
		rule:     actions.Keyword{Words: []string{"ping"}},
		parallel: true,
		execErr:  fmt.Errorf("backend unavailable"),
	}
	after := &scriptedAction{
		name:     "after",
		rule:     actions.Keyword{Words: []string{"ping"}},
		parallel: true,
		replies:  []string{"still here"},
	}
	reg := fixedRegistry(t, []actions.Action{bad, after}, nil)

	out := runScript(t, Options{Registry: reg}, "ping\n/quit\n")

	if !strings.Contains(out, "still here") {
		t.Errorf("later action skipped after a failure, output: %q", out)
	}
}

func TestRun_MasterSwitchDisablesEverything(t *testing.T) {
	store := testStore(t)
	if _, err := store.Set("plugin.enabled", "false"); err != nil {
		t.Fatalf("disable plugin: %v", err)
	}

	out := runScript(t, Options{Store: store}, "/help\nhello\n/quit\n")

	if !strings.Contains(out, "unknown command") {
		t.Errorf("/help matched with the plugin disabled, output: %q", out)
	}
}

func TestHandleCommand_AppliesTimeout(t *testing.T) {
	var hadDeadline bool
	probe := &commands.Pattern{
		ID:      "probe",
		Pattern: `/probe`,
		Handler: func(ctx context.Context, inv *commands.Invocation) (*commands.Result, error) {
			_, hadDeadline = ctx.Deadline()
			return &commands.Result{Text: "probed"}, nil
		},
	}
	reg := fixedRegistry(t, nil, []*commands.Pattern{probe})

	out := runScript(t, Options{Registry: reg}, "/probe\n/quit\n")

	if !hadDeadline {
		t.Error("command handler ran without a deadline")
	}
	if !strings.Contains(out, "probed") {
		t.Errorf("handler result not printed, output: %q", out)
	}
}

func TestHandleCommand_TimeoutReported(t *testing.T) {
	slow := &commands.Pattern{
		ID:      "slow",
		Pattern: `/slow`,
		Handler: func(ctx context.Context, inv *commands.Invocation) (*commands.Result, error) {
			return nil, context.DeadlineExceeded
		},
	}
	reg := fixedRegistry(t, nil, []*commands.Pattern{slow})

	out := runScript(t, Options{Registry: reg}, "/slow\n/quit\n")

	if !strings.Contains(out, "command timed out") {
		t.Errorf("timeout not reported, output: %q", out)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, err := New(Options{
		Store:  testStore(t),
		Logger: discardLogger(),
		In:     strings.NewReader("hello\n"),
		Out:    io.Discard,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := h.Run(ctx); err == nil {
		t.Error("Run() ignored a cancelled context")
	}
}

func TestSessionID_Unique(t *testing.T) {
	store := testStore(t)
	a, err := New(Options{Store: store, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := New(Options{Store: store, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.SessionID() == "" || a.SessionID() == b.SessionID() {
		t.Errorf("session ids not unique: %q vs %q", a.SessionID(), b.SessionID())
	}
}
