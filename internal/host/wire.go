package host

import (
	"log/slog"
	"math/rand"

	"github.com/haasonsaas/pluginhost/internal/actions"
	"github.com/haasonsaas/pluginhost/internal/commands"
	"github.com/haasonsaas/pluginhost/internal/components"
	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

// BuiltinRegistry declares the builtin component set: the greeting and
// smart response actions and the /help and /config commands, each gated
// by its features flag. Factories close over their dependencies, so the
// registry itself stays injection-free.
func BuiltinRegistry(store *config.Store, rng *rand.Rand, metrics *observability.Metrics, logger *slog.Logger) *components.Registry {
	reg := components.NewRegistry(logger)

	declare(reg, components.Descriptor{
		Name:        "greeting",
		Kind:        components.KindAction,
		Description: "Replies when a greeting keyword appears",
		EnableFlag:  "features.enable_greetings",
		New:         func() any { return actions.NewGreeting(store, rng, logger) },
	})
	declare(reg, components.Descriptor{
		Name:        "smart_response",
		Kind:        components.KindAction,
		Description: "Occasional context-aware replies with a TTL cache",
		EnableFlag:  "features.enable_smart_responses",
		New:         func() any { return actions.NewSmartResponse(store, rng, metrics, logger) },
	})
	declare(reg, components.Descriptor{
		Name:        "help",
		Kind:        components.KindCommand,
		Description: "Shows available commands and configuration",
		EnableFlag:  "features.enable_help_command",
		New:         func() any { return commands.HelpPattern(store) },
	})
	declare(reg, components.Descriptor{
		Name:        "config",
		Kind:        components.KindCommand,
		Description: "Reads and writes configuration at runtime",
		EnableFlag:  "features.enable_config_command",
		New:         func() any { return commands.ConfigPattern(store, metrics) },
	})

	return reg
}

// declare panics on registration failure. The builtin table is static, so
// a failure is a programming error on the level of a bad regexp literal.
func declare(reg *components.Registry, d components.Descriptor) {
	if err := reg.Register(d); err != nil {
		panic(err)
	}
}
