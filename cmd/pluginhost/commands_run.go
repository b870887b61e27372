package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/internal/actions"
	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/host"
	"github.com/haasonsaas/pluginhost/internal/judge"
	"github.com/haasonsaas/pluginhost/internal/observability"
)

func buildRunCmd() *cobra.Command {
	var (
		configPath string
		modeName   string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive plugin session",
		Long: `Start an interactive session over stdin/stdout.

Slash-prefixed input goes to the command matcher; everything else is a
chat turn handed to the action dispatcher. /quit exits. Components are
resolved once at startup from the configuration's feature flags.`,
		Example: `  # Defaults, no config file
  pluginhost run

  # Focused mode with a reproducible random source
  pluginhost run --mode focused --seed 42 --config plugin.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewSource(seed))
			}
			return runInteractive(cmd.Context(), configPath, modeName, rng, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML or YAML configuration file")
	cmd.Flags().StringVarP(&modeName, "mode", "m", "normal", "Chat mode: normal or focused")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for random activation and reply choice")

	return cmd
}

func runInteractive(ctx context.Context, configPath, modeName string, rng *rand.Rand, in io.Reader, out io.Writer) error {
	store, err := openStore(configPath)
	if err != nil {
		return err
	}
	applyLogLevel(store)

	mode, err := actions.ParseMode(modeName)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if store.GetBool("advanced.performance_monitor", false) {
		metrics = observability.NewMetrics(nil)
	}

	j := judgeFromEnv()

	slog.Info("starting interactive session",
		"version", version,
		"config", configPath,
		"mode", string(mode),
		"judge", j != nil,
		"metrics", metrics != nil,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Live-reload the store on file edits; behavior parameters are read
	// per turn, so changes apply to the running session.
	if configPath != "" {
		watcher := config.NewWatcher(store, configPath, 0, slog.Default())
		if err := watcher.Start(ctx); err != nil {
			slog.Warn("config watch unavailable", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	h, err := host.New(host.Options{
		Store:   store,
		Mode:    mode,
		Judge:   j,
		Rng:     rng,
		Metrics: metrics,
		In:      in,
		Out:     out,
	})
	if err != nil {
		return err
	}

	if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// judgeFromEnv builds an activation judge from API keys in the
// environment, preferring Anthropic. Without a key, judge rules never
// activate and the session still works.
func judgeFromEnv() judge.Judge {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		j, err := judge.NewAnthropicJudge(judge.AnthropicConfig{APIKey: key})
		if err == nil {
			return j
		}
		slog.Warn("anthropic judge unavailable", "error", err)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		j, err := judge.NewOpenAIJudge(judge.OpenAIConfig{APIKey: key})
		if err == nil {
			return j
		}
		slog.Warn("openai judge unavailable", "error", err)
	}
	return nil
}

// applyLogLevel re-levels the default logger from advanced.log_level.
func applyLogLevel(store *config.Store) {
	level := slog.LevelInfo
	switch store.GetString("advanced.log_level", "INFO") {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}
	if store.GetBool("plugin.debug_mode", false) {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
