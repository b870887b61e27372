package actions

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/haasonsaas/pluginhost/internal/config"
)

// defaultGreetingKeywords mirrors the schema default for
// actions.greeting_keywords.
var defaultGreetingKeywords = []string{"你好", "hello", "hi", "嗨"}

// greetingTemplates are the base replies; one is chosen per greeting.
var greetingTemplates = []string{"你好", "很高兴遇到你", "Hi there"}

// greetingSuffixes soften the reply and are picked independently of the
// template.
var greetingSuffixes = []string{"！", "~", "！😊", "！很高兴见到你"}

// greetingEmoji are sent as a trailing reply when emoji are enabled.
var greetingEmoji = []string{"😊", "👋", "🌟", "💫", "✨"}

// Greeting replies to greeting keywords with a friendly template and an
// optional emoji follow-up.
type Greeting struct {
	store  *config.Store
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGreeting creates the greeting action. A nil rng falls back to a
// time-seeded source; tests inject a fixed seed for determinism.
func NewGreeting(store *config.Store, rng *rand.Rand, logger *slog.Logger) *Greeting {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Greeting{
		store:  store,
		logger: logger.With("component", "actions"),
		rng:    rng,
	}
}

// Name implements Action.
func (g *Greeting) Name() string { return "greeting" }

// Description implements Action.
func (g *Greeting) Description() string {
	return "Replies to greetings with a friendly message"
}

// Rule activates on the configured keywords in normal mode and
// unconditionally in focused mode.
func (g *Greeting) Rule(mode ChatMode) Rule {
	if mode == ModeFocused {
		return Always{}
	}
	return Keyword{
		Words: g.store.GetStringList("actions.greeting_keywords", defaultGreetingKeywords),
	}
}

// ParallelAllowed implements Action. Greetings coexist with other actions.
func (g *Greeting) ParallelAllowed() bool { return true }

// Execute renders a greeting, optionally followed by an emoji reply.
// Replies are truncated to actions.max_response_length runes.
func (g *Greeting) Execute(ctx context.Context, turn *Turn) (*Result, error) {
	maxLen := int(g.store.GetInt("actions.max_response_length", 200))
	withEmoji := g.store.GetBool("actions.enable_emoji", true)

	g.mu.Lock()
	greeting := greetingTemplates[g.rng.Intn(len(greetingTemplates))] +
		greetingSuffixes[g.rng.Intn(len(greetingSuffixes))]
	var emoji string
	if withEmoji {
		emoji = greetingEmoji[g.rng.Intn(len(greetingEmoji))]
	}
	g.mu.Unlock()

	replies := []string{Truncate(greeting, maxLen)}
	if emoji != "" {
		replies = append(replies, emoji)
	}

	if g.store.GetBool("plugin.debug_mode", false) {
		g.logger.Debug("greeting rendered",
			"session", turn.SessionKey,
			"replies", len(replies))
	}

	return &Result{Replies: replies}, nil
}
