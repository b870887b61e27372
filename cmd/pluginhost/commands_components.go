package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/pluginhost/internal/host"
)

func buildComponentsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "Inspect the builtin component set",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to TOML or YAML configuration file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active components and why the rest are disabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			reg := host.BuiltinRegistry(store, rng, nil, slog.Default())
			resolved := reg.Resolve(store)

			out := cmd.OutOrStdout()
			if len(resolved) > 0 {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tKIND\tDESCRIPTION")
				for _, r := range resolved {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Kind, r.Description)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, "no active components")
			}

			if diags := reg.Diagnostics(); len(diags) > 0 {
				fmt.Fprintln(out, "\ndisabled:")
				for _, d := range diags {
					fmt.Fprintf(out, "  %s: %s\n", d.Component, d.Reason)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd)
	return cmd
}
