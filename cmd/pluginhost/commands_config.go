package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/internal/commands"
	"github.com/haasonsaas/pluginhost/internal/config"
)

func buildConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change plugin configuration",
		Long: `Read and write configuration values against the plugin schema.

Values are validated on write: typed coercion of the string input,
choice and range checks, and the read-only denylist all apply. With
--config, set and reset persist the full tree back to the file.`,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to TOML or YAML configuration file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			for _, e := range store.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", e.Key, config.FormatValue(e.Value))
			}
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			key := commands.ResolveKey(store, args[0])
			f, ok := store.Schema().Field(key)
			if !ok {
				return fmt.Errorf("unknown configuration key %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.FormatValue(store.Get(key, f.Default)))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Example: `  pluginhost config set actions.response_probability 0.3 --config plugin.toml
  pluginhost config set actions.greeting_keywords "[hello, hey, hi]" --config plugin.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			key := commands.ResolveKey(store, args[0])
			applied, err := store.Set(key, args[1])
			if err != nil {
				return err
			}
			if err := persist(store, configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, config.FormatValue(applied))
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset <key>",
		Short: "Restore one configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			key := commands.ResolveKey(store, args[0])
			value, err := store.Reset(key)
			if err != nil {
				return err
			}
			if err := persist(store, configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, config.FormatValue(value))
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd, setCmd, resetCmd)
	return cmd
}

// persist writes the store back to the config file. TOML is the canonical
// write format; YAML configs are read-only.
func persist(store *config.Store, path string) error {
	if path == "" {
		slog.Warn("no --config file given; the change applies to this invocation only")
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return fmt.Errorf("%s: YAML configs are read-only; persisting requires a TOML file", path)
	}
	return config.Save(store, path)
}
