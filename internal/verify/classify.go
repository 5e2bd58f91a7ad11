// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify invokes the external Lean checker on candidate artifacts
// and turns its raw output into structured verification results.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const (
	// feedbackStateLimit caps the extracted proof-state snippet.
	feedbackStateLimit = 1000

	// feedbackTailLimit caps the raw-tail fallback.
	feedbackTailLimit = 800
)

// toolRule matches one family of tool-failure signatures in checker output.
// Rules are evaluated in order; the first match wins. Keeping the rule set
// as data lets new signatures be added without touching control flow.
type toolRule struct {
	match    func(lower string) bool
	summary  string
	feedback string
}

// toolRules lists the tool-failure signatures in priority order. Tool
// indicators are checked before any logical-error analysis so that
// transient or environmental failures never pollute the sampler's context
// with "fix your proof" instructions.
var toolRules = []toolRule{
	{
		match:    containsAny("timeout", "deadline"),
		summary:  "Timeout",
		feedback: "The verifier timed out. The proof may be inefficient or looping.",
	},
	{
		match:    containsAny("out of memory", "segmentation fault"),
		summary:  "Resource Exhaustion",
		feedback: "The verifier ran out of system resources.",
	},
	{
		match:    containsAny("unknown package", "no such file"),
		summary:  "Environment Error",
		feedback: "Missing imports or dependency configuration error.",
	},
}

func containsAny(needles ...string) func(string) bool {
	return func(lower string) bool {
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
		return false
	}
}

// errorLinePattern matches the first message after an "error:" marker,
// the standard Lean diagnostic format.
var errorLinePattern = regexp.MustCompile(`(?i)error:\s*(.*)`)

// proofStatePattern captures the proof state Lean prints after an
// "unsolved goals" marker, up to the next blank line or end of output.
var proofStatePattern = regexp.MustCompile(`(?s)unsolved goals\n(.*?)(?:\n\n|$)`)

// Classify maps raw checker output and exit status to a structured
// VerificationResult. Exactly one Status is produced for any input:
// exit code 0 is OK, tool-failure signatures take priority over logical
// analysis, and everything else is a logical error with a bounded
// feedback extract.
func Classify(stdout, stderr string, exitCode int) types.VerificationResult {
	if exitCode == 0 {
		return types.VerificationResult{
			Status:        types.StatusOK,
			Summary:       "Verification Successful",
			Feedback:      "The proof is correct. No errors found.",
			RawStdout:     stdout,
			RawStderr:     stderr,
			UnsolvedGoals: 0,
		}
	}

	fullOutput := strings.TrimSpace(stdout + "\n" + stderr)
	lower := strings.ToLower(fullOutput)

	for _, rule := range toolRules {
		if rule.match(lower) {
			return types.VerificationResult{
				Status:    types.StatusErrTool,
				Summary:   rule.summary,
				Feedback:  rule.feedback,
				RawStdout: stdout,
				RawStderr: stderr,
			}
		}
	}

	goals := countUnsolvedGoals(fullOutput)

	summary := "Logical Error"
	switch {
	case strings.Contains(lower, "tactic") && strings.Contains(lower, "failed"):
		summary = "Tactic Failure"
	case strings.Contains(lower, "type mismatch"):
		summary = "Type Mismatch"
	case strings.Contains(lower, "unknown identifier"):
		summary = "Syntax/Scope Error"
	}

	return types.VerificationResult{
		Status:        types.StatusErrLogical,
		Summary:       fmt.Sprintf("%s (%d goals left)", summary, goals),
		Feedback:      extractErrorContext(fullOutput),
		RawStdout:     stdout,
		RawStderr:     stderr,
		UnsolvedGoals: goals,
	}
}

// countUnsolvedGoals estimates the number of remaining proof obligations.
// Lean lists a "case ..." block per goal, so the case count is used when
// the output reports unsolved goals, with a lower bound of one. Any other
// failing output counts as a single obligation.
func countUnsolvedGoals(output string) int {
	if strings.Contains(output, "unsolved goals") {
		if n := strings.Count(output, "case "); n > 1 {
			return n
		}
		return 1
	}
	return 1
}

// extractErrorContext pulls the most relevant slice of the checker log so
// the sampler's context window is not flooded with noise. Up to three
// pieces are joined: the first compiler error line, the proof state after
// an "unsolved goals" marker, and, if neither was found, the raw tail of
// the log.
func extractErrorContext(output string) string {
	var pieces []string

	if m := errorLinePattern.FindStringSubmatch(output); m != nil {
		pieces = append(pieces, "Compiler Error: "+m[1])
	}

	if strings.Contains(output, "unsolved goals") {
		if m := proofStatePattern.FindStringSubmatch(output); m != nil {
			state := strings.TrimSpace(m[1])
			if len(state) > feedbackStateLimit {
				state = state[:feedbackStateLimit] + "... [truncated]"
			}
			pieces = append(pieces, "Proof State at Failure:\n"+state)
		}
	}

	if len(pieces) == 0 {
		tail := output
		if len(tail) > feedbackTailLimit {
			tail = tail[len(tail)-feedbackTailLimit:]
		}
		pieces = append(pieces, "Raw Output Tail:\n"+strings.TrimSpace(tail))
	}

	return strings.Join(pieces, "\n")
}
