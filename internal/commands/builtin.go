package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

// HelpArgs are the captures produced by the help pattern.
type HelpArgs struct {
	Topic string
}

// ConfigArgs are the captures produced by the config pattern.
type ConfigArgs struct {
	Action string
	Key    string
	Value  string
}

// DecodeHelpArgs extracts help arguments from a capture map.
func DecodeHelpArgs(captures map[string]string) HelpArgs {
	return HelpArgs{Topic: captures["topic"]}
}

// DecodeConfigArgs extracts config arguments from a capture map.
func DecodeConfigArgs(captures map[string]string) ConfigArgs {
	return ConfigArgs{
		Action: captures["action"],
		Key:    captures["key"],
		Value:  captures["value"],
	}
}

// RegisterBuiltins registers the builtin help and config patterns.
// Configuration writes made through /config are recorded on metrics;
// a nil metrics records nothing.
func RegisterBuiltins(m *Matcher, store *config.Store, metrics *observability.Metrics) {
	mustRegister := func(p *Pattern) {
		if err := m.Register(p); err != nil {
			panic(fmt.Sprintf("failed to register builtin pattern %q: %v", p.ID, err))
		}
	}

	mustRegister(HelpPattern(store))
	mustRegister(ConfigPattern(store, metrics))
}

// HelpPattern builds the /help command. An optional topic narrows the
// output to one section.
func HelpPattern(store *config.Store) *Pattern {
	return &Pattern{
		ID:          "help",
		Pattern:     `^/help(?:\s+(?P<topic>actions|commands|config|all))?$`,
		Description: "Show plugin help, optionally for one topic",
		Examples: []string{
			"/help",
			"/help actions",
			"/help commands",
			"/help config",
			"/help all",
		},
		Handler: helpHandler(store),
	}
}

// ConfigPattern builds the /config command. When
// commands.config_admin_only is set, non-admin invocations get a
// permission-denied result, never an error.
func ConfigPattern(store *config.Store, metrics *observability.Metrics) *Pattern {
	return &Pattern{
		ID:          "config",
		Pattern:     `^/config\s+(?P<action>get|set|list|reset)(?:\s+(?P<key>\w+(?:\.\w+)*))?(?:\s+(?P<value>.+))?$`,
		Description: "Inspect and change plugin configuration",
		Examples: []string{
			"/config list",
			"/config get plugin.enabled",
			"/config set debug_mode true",
			"/config reset features.enable_greetings",
		},
		Handler: configHandler(store, metrics),
	}
}

// ResolveKey expands a bare field name to its dotted path, using the
// first schema field with that name in declaration order. Dotted keys
// pass through unchanged.
func ResolveKey(store *config.Store, key string) string {
	if key == "" || strings.Contains(key, ".") {
		return key
	}
	for _, f := range store.Schema().Fields() {
		if f.Name() == key {
			return f.Key
		}
	}
	return key
}

func helpHandler(store *config.Store) Handler {
	return func(ctx context.Context, inv *Invocation) (*Result, error) {
		args := DecodeHelpArgs(inv.Captures)
		prefix := store.GetString("commands.help_prefix", "📖")

		var sb strings.Builder
		switch args.Topic {
		case "actions":
			writeActionsHelp(&sb, prefix)
		case "commands":
			writeCommandsHelp(&sb, prefix)
		case "config":
			writeConfigHelp(&sb, prefix, store)
		case "all":
			writeGeneralHelp(&sb, prefix)
			sb.WriteString("\n")
			writeActionsHelp(&sb, prefix)
			sb.WriteString("\n")
			writeCommandsHelp(&sb, prefix)
			sb.WriteString("\n")
			writeConfigHelp(&sb, prefix, store)
		default:
			writeGeneralHelp(&sb, prefix)
		}

		topic := args.Topic
		if topic == "" {
			topic = "general"
		}
		return &Result{
			Text:     sb.String(),
			Markdown: true,
			Data:     map[string]any{"topic": topic},
		}, nil
	}
}

func writeGeneralHelp(sb *strings.Builder, prefix string) {
	sb.WriteString(fmt.Sprintf("%s **Plugin Help**\n\n", prefix))
	sb.WriteString("Available commands:\n")
	sb.WriteString("  `/help [topic]` - Show help (topics: actions, commands, config, all)\n")
	sb.WriteString("  `/config <get|set|list|reset> [key] [value]` - Inspect and change configuration\n\n")
	sb.WriteString("Features:\n")
	sb.WriteString("  Greeting - replies when a greeting keyword appears\n")
	sb.WriteString("  Smart response - occasional context-aware replies\n\n")
	sb.WriteString("Use `/help <topic>` for details.\n")
}

func writeActionsHelp(sb *strings.Builder, prefix string) {
	sb.WriteString(fmt.Sprintf("%s **Actions**\n\n", prefix))
	sb.WriteString("Actions run on ordinary chat turns when their activation rule fires.\n\n")
	sb.WriteString("**greeting_action**\n")
	sb.WriteString("  Replies to greeting keywords; see `actions.greeting_keywords`.\n")
	sb.WriteString("**smart_response_action**\n")
	sb.WriteString("  Occasionally adds a context reply; see `actions.response_probability`.\n\n")
	sb.WriteString("Toggles: `features.enable_greetings`, `features.enable_smart_responses`.\n")
}

func writeCommandsHelp(sb *strings.Builder, prefix string) {
	sb.WriteString(fmt.Sprintf("%s **Commands**\n\n", prefix))
	sb.WriteString("Commands respond deterministically to slash-prefixed input.\n\n")
	sb.WriteString("**help**\n")
	sb.WriteString("  Usage: `/help [topic]`\n")
	sb.WriteString("**config**\n")
	sb.WriteString("  Usage: `/config <get|set|list|reset> [key] [value]`\n\n")
	sb.WriteString("Toggles: `features.enable_help_command`, `features.enable_config_command`.\n")
}

func writeConfigHelp(sb *strings.Builder, prefix string, store *config.Store) {
	sb.WriteString(fmt.Sprintf("%s **Configuration**\n\n", prefix))
	section := ""
	for _, entry := range store.List() {
		if entry.Section != section {
			if section != "" {
				sb.WriteString("\n")
			}
			section = entry.Section
			sb.WriteString(fmt.Sprintf("**[%s]**\n", section))
		}
		sb.WriteString(fmt.Sprintf("  `%s` = %s", entry.Name, config.FormatValue(entry.Value)))
		if f, ok := store.Schema().Field(entry.Key); ok && f.Description != "" {
			sb.WriteString(" - " + f.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nUse `/config get <key>` and `/config set <key> <value>` to inspect and change values.\n")
}

func configHandler(store *config.Store, metrics *observability.Metrics) Handler {
	return func(ctx context.Context, inv *Invocation) (*Result, error) {
		if store.GetBool("commands.config_admin_only", true) && !inv.IsAdmin {
			return &Result{Error: "This command requires admin privileges"}, nil
		}

		args := DecodeConfigArgs(inv.Captures)
		switch args.Action {
		case "list":
			return configList(store), nil
		case "get":
			return configGet(store, args.Key), nil
		case "set":
			return configSet(store, metrics, args.Key, args.Value), nil
		case "reset":
			return configReset(store, metrics, args.Key), nil
		default:
			return &Result{Error: fmt.Sprintf("Unsupported action: %s", args.Action)}, nil
		}
	}
}

func configList(store *config.Store) *Result {
	var sb strings.Builder
	sb.WriteString("**Plugin Configuration**\n\n")
	section := ""
	for _, entry := range store.List() {
		if entry.Section != section {
			if section != "" {
				sb.WriteString("\n")
			}
			section = entry.Section
			sb.WriteString(fmt.Sprintf("**[%s]**\n", section))
		}
		sb.WriteString(fmt.Sprintf("  %s = %s\n", entry.Name, config.FormatValue(entry.Value)))
	}
	sb.WriteString("\nUse `/config get <key>` for details.")
	return &Result{Text: sb.String(), Markdown: true}
}

func configGet(store *config.Store, key string) *Result {
	if key == "" {
		return &Result{Error: "Usage: /config get <key>"}
	}
	resolved := ResolveKey(store, key)
	f, ok := store.Schema().Field(resolved)
	if !ok {
		return &Result{Error: fmt.Sprintf("Unknown configuration key: %s", key)}
	}

	value := store.Get(resolved, f.Default)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Key: %s\n", f.Key))
	sb.WriteString(fmt.Sprintf("Value: %s\n", config.FormatValue(value)))
	sb.WriteString(fmt.Sprintf("Type: %s\n", f.Type))
	sb.WriteString(fmt.Sprintf("Default: %s", config.FormatValue(f.Default)))
	if store.ReadOnly(f.Key) {
		sb.WriteString("\nRead-only: yes")
	}
	return &Result{
		Text: sb.String(),
		Data: map[string]any{"key": f.Key, "value": value},
	}
}

func configSet(store *config.Store, metrics *observability.Metrics, key, value string) *Result {
	if key == "" || value == "" {
		return &Result{Error: "Usage: /config set <key> <value>"}
	}
	resolved := ResolveKey(store, key)
	previous := store.Get(resolved, nil)
	applied, err := store.Set(resolved, value)
	metrics.ConfigSet(setOutcome(err))
	if err != nil {
		return &Result{Error: storeErrorText(err)}
	}

	var sb strings.Builder
	sb.WriteString("Configuration updated\n\n")
	sb.WriteString(fmt.Sprintf("Key: %s\n", resolved))
	sb.WriteString(fmt.Sprintf("Old value: %s\n", config.FormatValue(previous)))
	sb.WriteString(fmt.Sprintf("New value: %s", config.FormatValue(applied)))
	return &Result{
		Text: sb.String(),
		Data: map[string]any{"key": resolved, "value": applied},
	}
}

func configReset(store *config.Store, metrics *observability.Metrics, key string) *Result {
	if key == "" {
		return &Result{Error: "Usage: /config reset <key>"}
	}
	resolved := ResolveKey(store, key)
	value, err := store.Reset(resolved)
	metrics.ConfigSet(setOutcome(err))
	if err != nil {
		return &Result{Error: storeErrorText(err)}
	}
	return &Result{
		Text: fmt.Sprintf("Configuration %s reset to %s", resolved, config.FormatValue(value)),
		Data: map[string]any{"key": resolved, "value": value},
	}
}

// setOutcome maps a store write result to its metric label.
func setOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var readonly *config.ReadOnlyError
	if errors.As(err, &readonly) {
		return "readonly"
	}
	var unknown *config.UnknownKeyError
	if errors.As(err, &unknown) {
		return "unknown_key"
	}
	var conversion *config.ConversionError
	if errors.As(err, &conversion) {
		return "conversion"
	}
	var validation *config.ValidationError
	if errors.As(err, &validation) {
		return "validation"
	}
	return "error"
}

// storeErrorText renders a store error as a user-facing message.
func storeErrorText(err error) string {
	var readonly *config.ReadOnlyError
	if errors.As(err, &readonly) {
		return fmt.Sprintf("Configuration %s is read-only", readonly.Key)
	}
	var unknown *config.UnknownKeyError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("Unknown configuration key: %s", unknown.Key)
	}
	var conversion *config.ConversionError
	if errors.As(err, &conversion) {
		return fmt.Sprintf("Cannot convert %q to %s for %s", conversion.Raw, conversion.Type, conversion.Key)
	}
	var validation *config.ValidationError
	if errors.As(err, &validation) {
		return fmt.Sprintf("Invalid value for %s: %s", validation.Key, validation.Reason)
	}
	return err.Error()
}
