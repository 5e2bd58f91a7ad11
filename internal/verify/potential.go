// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"regexp"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// lineCommentPattern strips Lean line comments before token counting.
var lineCommentPattern = regexp.MustCompile(`--.*`)

// sorryPattern matches the whole-word `sorry` tactic, Lean's marker for an
// admitted-but-unproved goal.
var sorryPattern = regexp.MustCompile(`\bsorry\b`)

// Potential computes the scalar convergence metric Φ: a non-negative
// "distance from correct" combining the candidate's admitted-marker count
// with the verification outcome. It is a monitoring signal, not a gate on
// the refinement loop.
type Potential struct {
	weightGoals  float64
	weightSorry  float64
	penaltyError float64
}

// NewPotential creates a calculator with the given weights.
func NewPotential(cfg types.PotentialConfig) *Potential {
	return &Potential{
		weightGoals:  cfg.WeightGoals,
		weightSorry:  cfg.WeightSorry,
		penaltyError: cfg.PenaltyError,
	}
}

// Compute returns Φ for a candidate and, optionally, its verification
// result. The value is zero exactly when the checker accepted the
// candidate and its proof script contains no admitted markers; a
// compiler-accepted proof that still admits goals keeps its base
// potential.
func (p *Potential) Compute(artifact types.Artifact, result *types.VerificationResult) float64 {
	sorryCount := CountSorry(artifact.ProofScript)
	potential := float64(sorryCount) * p.weightSorry

	if result == nil {
		return potential
	}

	switch result.Status {
	case types.StatusOK:
		if sorryCount == 0 {
			return 0
		}

	case types.StatusErrLogical:
		potential += float64(result.UnsolvedGoals) * p.weightGoals
		if result.UnsolvedGoals == 0 {
			// The classifier found a logical error but no goal count —
			// typically a syntax error that prevented goal display.
			potential += p.penaltyError
		}

	case types.StatusErrTool:
		potential += p.penaltyError
	}

	return potential
}

// CountSorry statically counts admitted-goal markers in a proof script,
// ignoring line comments.
func CountSorry(proofScript string) int {
	stripped := lineCommentPattern.ReplaceAllString(proofScript, "")
	return len(sorryPattern.FindAllString(stripped, -1))
}
