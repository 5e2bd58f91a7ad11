// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded synthesis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineConfig()
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := runlog.NewStore(cfg.RunLog)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVERIFIED\tSTEPS\tSTARTED\tINTENT")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%t\t%d\t%s\t%s\n",
				r.ID, r.Verified, r.Steps, r.StartedAt, truncateIntent(r.Intent))
		}
		return w.Flush()
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export one run with its convergence series as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineConfig()

		store, err := runlog.NewStore(cfg.RunLog)
		if err != nil {
			return err
		}
		defer store.Close()

		export, err := store.Export(args[0])
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(export)
		if err != nil {
			return fmt.Errorf("marshaling run export: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func truncateIntent(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:60] + "..."
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsExportCmd)

	rootCmd.AddCommand(runsCmd)
}
