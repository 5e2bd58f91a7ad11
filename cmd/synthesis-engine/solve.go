// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/synthesis-engine/internal/agent"
	"github.com/pdiddy/synthesis-engine/internal/embedding"
	"github.com/pdiddy/synthesis-engine/internal/refine"
	"github.com/pdiddy/synthesis-engine/internal/runlog"
	"github.com/pdiddy/synthesis-engine/internal/verify"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

var solveCmd = &cobra.Command{
	Use:   "solve <intent>",
	Short: "Synthesize a verified artifact from a natural-language requirement",
	Long: `Solve formalizes the requirement into behavioral predicates, embeds them
as a Lean theorem, then runs the bounded refinement loop: sample a candidate
from the configured backend, verify it with the checker, feed the classified
error back, repeat. On success the artifact and its specifications are
written to the output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineConfig()
		applySolveFlags(cmd, &cfg)

		intent := strings.Join(args, " ")
		return runSolve(cmd, cfg, intent)
	},
}

func init() {
	solveCmd.Flags().String("backend", "", "sampling backend: claude, openai, or simulation")
	solveCmd.Flags().String("model", "", "model identifier for the live backends")
	solveCmd.Flags().String("workspace", "", "Lean workspace directory (contains lakefile.lean)")
	solveCmd.Flags().Int("max-steps", 0, "refinement step budget")
	solveCmd.Flags().Duration("timeout", 0, "per-verification timeout")
	solveCmd.Flags().String("output-dir", "", "directory for the successful artifact file")

	rootCmd.AddCommand(solveCmd)
}

func applySolveFlags(cmd *cobra.Command, cfg *types.SynthesisConfig) {
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.AI.Backend = types.BackendKind(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.AI.Model = v
	}
	if v, _ := cmd.Flags().GetString("workspace"); v != "" {
		cfg.Verifier.ProjectRoot = v
	}
	if v, _ := cmd.Flags().GetInt("max-steps"); v > 0 {
		cfg.Refine.MaxRefinementSteps = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Refine.TimeoutPerVerification = v
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	*cfg = cfg.WithDefaults()
}

func runSolve(cmd *cobra.Command, cfg types.SynthesisConfig, intent string) error {
	backend, err := agent.NewBackend(cfg.AI)
	if err != nil {
		return err
	}

	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.BeginRun(intent)
	if err != nil {
		return err
	}

	potential := verify.NewPotential(cfg.Potential)
	orch := refine.New(
		cfg.Refine,
		agent.NewFormalizer(backend, cfg.AI),
		embedding.NewMapper(),
		agent.NewSynthesizer(backend, cfg.AI),
		verify.NewVerifier(cfg.Verifier),
		potential.Compute,
		run,
	)

	start := time.Now()
	artifact, solveErr := orch.Solve(cmd.Context(), intent)
	result := orch.Report()

	if err := run.Finish(result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run outcome: %v\n", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case solveErr == nil:
		path, err := writeSolveResult(cfg.OutputDir, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "verified %s in %d step(s) (%s)\n",
			result.Logical.TheoremName, result.Steps, time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(out, "artifact written to %s (run %s)\n", path, run.ID)
		if n := verify.CountSorry(artifact.ProofScript); n > 0 {
			// The checker accepted the proof, but it still admits goals.
			fmt.Fprintf(out, "warning: accepted proof contains %d admitted marker(s)\n", n)
		}
		return nil

	case errors.Is(solveErr, refine.ErrBudgetExhausted):
		fmt.Fprintf(out, "no verified artifact after %d step(s) (run %s)\n", result.Steps, run.ID)
		return solveErr

	default:
		return solveErr
	}
}

// writeSolveResult writes the full solve result as YAML to the output
// directory, named after the theorem.
func writeSolveResult(outputDir string, result types.SolveResult) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(&result)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}

	path := filepath.Join(outputDir, result.Logical.TheoremName+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
