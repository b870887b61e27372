package actions

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/pluginhost/internal/cache"
	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

// smartJudgePrompt describes when a supplemental reply is warranted. The
// judge wraps it into a strict YES/NO question.
const smartJudgePrompt = "The user asked a question, requested advice, expressed emotion " +
	"that needs support, or is discussing a topic where supplemental information helps. " +
	"Do not apply for simple greetings or when the conversation has just started."

// Category keyword sets checked in order: thanks, farewell, question.
// Anything else falls through to the default category.
var (
	thanksWords   = []string{"谢谢", "感谢", "thank you", "thanks", "thx"}
	farewellWords = []string{"再见", "拜拜", "晚安", "goodbye", "bye", "see you"}
	questionWords = []string{"?", "？", "什么", "怎么", "为什么", "吗", "how", "what", "why", "when"}
)

// smartReplies maps an input category to its canned replies.
var smartReplies = map[string][]string{
	"question": {
		"关于这个话题，我了解到一些有趣的信息...",
		"从分析的角度来看，这个问题有几个维度：",
		"让我们深入分析一下这个情况：",
	},
	"thanks": {
		"不客气！很高兴能帮到你。",
		"不用谢～能帮上忙就好！",
		"我理解你的想法，互相帮助嘛。",
	},
	"farewell": {
		"再见！期待下次聊天～",
		"拜拜，保重！",
		"下次见！",
	},
	"default": {
		"我理解你的想法，这确实是一个值得考虑的问题。",
		"你的观点很有意思，我想分享一些相关的想法：",
		"这让我想到了一些相关的内容：",
	},
}

// classify buckets input text into a reply category.
func classify(text string) string {
	lower := strings.ToLower(text)
	for _, w := range thanksWords {
		if strings.Contains(lower, w) {
			return "thanks"
		}
	}
	for _, w := range farewellWords {
		if strings.Contains(lower, w) {
			return "farewell"
		}
	}
	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			return "question"
		}
	}
	return "default"
}

// SmartResponse supplements a conversation with a canned category reply.
// Normal mode activates randomly with actions.response_probability;
// focused mode defers to the judge. It never runs in parallel with other
// actions, so it exercises the single-action policy.
type SmartResponse struct {
	store     *config.Store
	responses *cache.ResponseCache
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSmartResponse creates the smart response action. The response cache
// TTL is fixed at construction from advanced.cache_ttl; whether the cache
// is consulted at all follows advanced.cache_enabled per turn.
func NewSmartResponse(store *config.Store, rng *rand.Rand, metrics *observability.Metrics, logger *slog.Logger) *SmartResponse {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	ttl := time.Duration(store.GetInt("advanced.cache_ttl", 3600)) * time.Second
	return &SmartResponse{
		store:     store,
		responses: cache.NewResponseCache(cache.Options{TTL: ttl}),
		metrics:   metrics,
		logger:    logger.With("component", "actions"),
		rng:       rng,
	}
}

// Name implements Action.
func (s *SmartResponse) Name() string { return "smart_response" }

// Description implements Action.
func (s *SmartResponse) Description() string {
	return "Supplements the conversation with a context-matched reply"
}

// Rule activates randomly in normal mode and by judge verdict in focused
// mode.
func (s *SmartResponse) Rule(mode ChatMode) Rule {
	if mode == ModeFocused {
		return Judge{Prompt: smartJudgePrompt}
	}
	return Random{
		Probability: s.store.GetFloat("actions.response_probability", 0.1),
	}
}

// ParallelAllowed implements Action.
func (s *SmartResponse) ParallelAllowed() bool { return false }

// Execute returns a category reply for the turn, serving repeats from the
// response cache when advanced.cache_enabled is true.
func (s *SmartResponse) Execute(ctx context.Context, turn *Turn) (*Result, error) {
	maxLen := int(s.store.GetInt("actions.max_response_length", 200))
	cacheEnabled := s.store.GetBool("advanced.cache_enabled", true)

	key := cache.NormalizeKey(turn.Text)
	if cacheEnabled {
		if reply, ok := s.responses.Get(key); ok {
			s.metrics.CacheHit()
			return &Result{Replies: []string{reply}, Cached: true}, nil
		}
		s.metrics.CacheMiss()
	}

	category := classify(turn.Text)
	templates := smartReplies[category]

	s.mu.Lock()
	reply := templates[s.rng.Intn(len(templates))]
	s.mu.Unlock()

	reply = Truncate(reply, maxLen)
	if cacheEnabled {
		s.responses.Put(key, reply)
	}

	if s.store.GetBool("plugin.debug_mode", false) {
		s.logger.Debug("smart reply rendered",
			"session", turn.SessionKey,
			"category", category)
	}

	return &Result{Replies: []string{reply}}, nil
}
