package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/pkg/manifest"
)

func buildManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Validate and describe plugin manifests",
	}
	cmd.AddCommand(buildManifestValidateCmd(), buildManifestSchemaCmd())
	return cmd
}

func buildManifestValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate <manifest.json>",
		Short: "Run the packaging checklist against a manifest",
		Long: `Run every checklist item and report all findings at once.

The exit code is 0 iff no error-level finding exists; warnings never
change it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}

			report := m.Validate()
			if !quiet {
				for _, f := range report.Findings {
					fmt.Fprintln(cmd.OutOrStdout(), f.String())
				}
			}

			if errs := report.Errors(); len(errs) > 0 {
				return fmt.Errorf("%s: %d error(s), %d warning(s)", args[0], len(errs), len(report.Warnings()))
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: ok (%d warning(s))\n", m.Name, m.Version, len(report.Warnings()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress findings; use the exit code only")

	return cmd
}

func buildManifestSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the manifest JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := manifest.JSONSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
