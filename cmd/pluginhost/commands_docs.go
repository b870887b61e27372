package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/internal/config"
	"github.com/haasonsaas/pluginhost/internal/docgen"
	"github.com/haasonsaas/pluginhost/pkg/manifest"
)

func buildDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate plugin documentation",
	}
	cmd.AddCommand(buildDocsGenerateCmd())
	return cmd
}

func buildDocsGenerateCmd() *cobra.Command {
	var (
		outPath    string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "generate <manifest.json>",
		Short: "Render reference documentation from a manifest",
		Long: `Render markdown documentation: manifest identity, declared
components, and the configuration key reference. With --config, a
current-values section for that file is appended.`,
		Example: `  pluginhost docs generate _manifest.json
  pluginhost docs generate _manifest.json -o README.generated.md --config plugin.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}

			doc := docgen.Generate(m, config.DefaultSchema())
			if configPath != "" {
				store, err := openStore(configPath)
				if err != nil {
					return err
				}
				doc = append(doc, docgen.ValuesSection(store.List())...)
			}

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(outPath, doc, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			slog.Info("documentation written", "path", outPath, "bytes", len(doc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Append current values from this config file")

	return cmd
}
