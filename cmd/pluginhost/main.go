// Package main provides the CLI entry point for pluginhost, a
// configuration-driven chat plugin runtime.
//
// pluginhost wires a schema-backed configuration store, a component
// registry, a command matcher, and an action dispatcher into an
// interactive demo session, and ships the surrounding plugin tooling:
// manifest validation, manifest JSON Schema export, and documentation
// generation.
//
// # Basic Usage
//
// Start an interactive session:
//
//	pluginhost run --config plugin.toml
//
// Inspect configuration:
//
//	pluginhost config list
//	pluginhost config set actions.response_probability 0.3 --config plugin.toml
//
// Validate a plugin manifest:
//
//	pluginhost manifest validate _manifest.json
//
// # Environment Variables
//
//   - ANTHROPIC_API_KEY: enables the Anthropic-backed activation judge
//   - OPENAI_API_KEY: enables the OpenAI-backed activation judge
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/internal/config"
)

// Build information - populated by ldflags during build.
//
// Example build command:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"     // Semantic version (e.g., "v1.0.0")
	commit  = "none"    // Git commit SHA
	date    = "unknown" // Build timestamp
)

func main() {
	// Structured logging to stderr keeps stdout clean for command output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pluginhost",
		Short: "pluginhost - configuration-driven chat plugin runtime",
		Long: `pluginhost hosts chat plugin components behind a schema-driven
configuration store: actions activate per chat turn through mode-aware
rules, slash commands match anchored patterns, and feature flags decide
which components register at all.

The repository also ships the plugin packaging toolkit: manifest
validation, the manifest JSON Schema, and a documentation generator.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildRunCmd(),
		buildConfigCmd(),
		buildComponentsCmd(),
		buildManifestCmd(),
		buildDocsCmd(),
	)

	return rootCmd
}

// openStore builds a store from the default schema and overlays the file
// at configPath when given. A missing file is not an error; defaults
// apply and a later save creates it.
func openStore(configPath string) (*config.Store, error) {
	store := config.NewStore(config.DefaultSchema(), slog.Default(), config.DefaultReadOnlyKeys...)
	if configPath == "" {
		return store, nil
	}
	if err := config.Load(store, configPath); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store, nil
}
