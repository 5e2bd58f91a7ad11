// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synthesis-engine/internal/verify"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <proof-file>",
	Short: "Verify a single candidate proof against the workspace",
	Long: `Verify runs the checker once on an existing candidate: the file's
contents become the proof script for the theorem statement given with
--theorem-file (or a trivial True obligation when omitted). The classified
result is printed; the exit code is non-zero unless verification succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineConfig()
		if v, _ := cmd.Flags().GetString("workspace"); v != "" {
			cfg.Verifier.ProjectRoot = v
		}

		proofData, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading proof file: %w", err)
		}

		spec := types.LogicalSpec{
			TheoremName: "Candidate_Correctness",
			LeanCode:    "theorem Candidate_Correctness : True := by\n  sorry\n",
		}
		if theoremFile, _ := cmd.Flags().GetString("theorem-file"); theoremFile != "" {
			leanCode, err := os.ReadFile(theoremFile)
			if err != nil {
				return fmt.Errorf("reading theorem file: %w", err)
			}
			spec.LeanCode = string(leanCode)
		}

		artifact := types.Artifact{
			ProofScript: string(proofData),
			Language:    "lean",
		}

		verifier := verify.NewVerifier(cfg.Verifier)
		result := verifier.Verify(cmd.Context(), spec, artifact, cfg.Refine.TimeoutPerVerification)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status:  %s\n", result.Status)
		fmt.Fprintf(out, "summary: %s\n", result.Summary)
		if result.Feedback != "" {
			fmt.Fprintf(out, "feedback:\n%s\n", result.Feedback)
		}

		if result.Status != types.StatusOK {
			return fmt.Errorf("verification failed: %s", result.Summary)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().String("workspace", "", "Lean workspace directory (contains lakefile.lean)")
	verifyCmd.Flags().String("theorem-file", "", "file holding the theorem statement with its proof hole")

	rootCmd.AddCommand(verifyCmd)
}
