// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"strings"
	"testing"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func TestClassifySuccess(t *testing.T) {
	result := Classify("Building SynthesisEngine... [OK]", "", 0)

	if result.Status != types.StatusOK {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusOK)
	}
	if result.UnsolvedGoals != 0 {
		t.Errorf("unsolved goals = %d, want 0", result.UnsolvedGoals)
	}
	if !strings.Contains(strings.ToLower(result.Feedback), "correct") {
		t.Errorf("feedback %q should mention success", result.Feedback)
	}
}

func TestClassifyToolErrors(t *testing.T) {
	tests := []struct {
		name        string
		stdout      string
		stderr      string
		wantSummary string
	}{
		{
			name:        "deterministic timeout",
			stderr:      "Error: (deterministic) timeout at 'simp', maximum number of steps exceeded",
			wantSummary: "Timeout",
		},
		{
			name:        "deadline",
			stdout:      "build aborted: Deadline exceeded while elaborating",
			wantSummary: "Timeout",
		},
		{
			name:        "out of memory",
			stderr:      "lake build: Out of memory",
			wantSummary: "Resource Exhaustion",
		},
		{
			name:        "segfault",
			stderr:      "Segmentation fault (core dumped)",
			wantSummary: "Resource Exhaustion",
		},
		{
			name:        "unknown package",
			stderr:      "error: unknown package 'FormalTrace'",
			wantSummary: "Environment Error",
		},
		{
			name:        "missing file",
			stderr:      "lake: no such file or directory: lakefile.lean",
			wantSummary: "Environment Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.stdout, tt.stderr, 1)
			if result.Status != types.StatusErrTool {
				t.Fatalf("status = %v, want %v", result.Status, types.StatusErrTool)
			}
			if !strings.Contains(result.Summary, tt.wantSummary) {
				t.Errorf("summary = %q, want it to contain %q", result.Summary, tt.wantSummary)
			}
		})
	}
}

// Tool indicators must win even when a generic "error:" marker is also
// present: transient failures must never be fed back as proof feedback.
func TestClassifyToolIndicatorPriority(t *testing.T) {
	stderr := "error: tactic 'simp' failed\n(deterministic) timeout at 'simp'"

	result := Classify("", stderr, 1)

	if result.Status != types.StatusErrTool {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusErrTool)
	}
	if !strings.Contains(result.Summary, "Timeout") {
		t.Errorf("summary = %q, want Timeout", result.Summary)
	}
}

func TestClassifyLogicalErrors(t *testing.T) {
	tests := []struct {
		name        string
		stdout      string
		wantSummary string
		wantGoals   int
	}{
		{
			name:        "tactic failure",
			stdout:      "error: tactic 'rfl' failed, equality lhs\n  1\nis not definitionally equal to rhs\n  2",
			wantSummary: "Tactic Failure",
			wantGoals:   1,
		},
		{
			name:        "type mismatch",
			stdout:      "error: type mismatch\n  h\nhas type Nat but is expected to have type Prop",
			wantSummary: "Type Mismatch",
			wantGoals:   1,
		},
		{
			name:        "unknown identifier",
			stdout:      "error: unknown identifier 'frobnicate'",
			wantSummary: "Syntax/Scope Error",
			wantGoals:   1,
		},
		{
			name:        "generic logical error",
			stdout:      "error: something else entirely went wrong",
			wantSummary: "Logical Error",
			wantGoals:   1,
		},
		{
			name:        "single unsolved goal",
			stdout:      "Main.lean:10:2: error: unsolved goals\ncase goal\ntrace : List State\n⊢ Trace.is_monotonic trace",
			wantSummary: "1 goals left",
			wantGoals:   1,
		},
		{
			name:        "multiple unsolved goals",
			stdout:      "error: unsolved goals\ncase goal_1\n⊢ 1 = 1\ncase goal_2\n⊢ 2 = 2",
			wantSummary: "2 goals left",
			wantGoals:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.stdout, "", 1)
			if result.Status != types.StatusErrLogical {
				t.Fatalf("status = %v, want %v", result.Status, types.StatusErrLogical)
			}
			if !strings.Contains(result.Summary, tt.wantSummary) {
				t.Errorf("summary = %q, want it to contain %q", result.Summary, tt.wantSummary)
			}
			if result.UnsolvedGoals != tt.wantGoals {
				t.Errorf("unsolved goals = %d, want %d", result.UnsolvedGoals, tt.wantGoals)
			}
		})
	}
}

func TestClassifyFeedbackExtraction(t *testing.T) {
	t.Run("compiler error line", func(t *testing.T) {
		result := Classify("error: tactic 'simp' failed, nested error", "", 1)
		if !strings.Contains(result.Feedback, "Compiler Error: tactic 'simp' failed") {
			t.Errorf("feedback = %q, want the compiler error line", result.Feedback)
		}
	})

	t.Run("proof state block", func(t *testing.T) {
		stdout := "x error: unsolved goals\ncase goal\ntrace : List State\n⊢ Trace.is_monotonic trace\n\nmore noise"
		result := Classify(stdout, "", 1)
		if !strings.Contains(result.Feedback, "Proof State at Failure:") {
			t.Fatalf("feedback = %q, want the proof state section", result.Feedback)
		}
		if !strings.Contains(result.Feedback, "Trace.is_monotonic trace") {
			t.Errorf("feedback = %q, want the goal line", result.Feedback)
		}
		if strings.Contains(result.Feedback, "more noise") {
			t.Errorf("feedback should stop at the blank line, got %q", result.Feedback)
		}
	})

	t.Run("proof state truncation", func(t *testing.T) {
		state := strings.Repeat("⊢ long hypothesis line\n", 200)
		result := Classify("error: unsolved goals\n"+state, "", 1)
		if !strings.Contains(result.Feedback, "... [truncated]") {
			t.Errorf("feedback should carry the truncation marker")
		}
	})

	t.Run("raw tail fallback", func(t *testing.T) {
		stdout := strings.Repeat("noise line without markers\n", 100)
		result := Classify(stdout, "", 1)
		if !strings.Contains(result.Feedback, "Raw Output Tail:") {
			t.Fatalf("feedback = %q, want the raw tail fallback", result.Feedback)
		}
		if len(result.Feedback) > feedbackTailLimit+100 {
			t.Errorf("feedback length %d exceeds the tail bound", len(result.Feedback))
		}
	})
}

func TestCountUnsolvedGoalsLowerBound(t *testing.T) {
	// "unsolved goals" with no case markers still counts as one.
	if got := countUnsolvedGoals("error: unsolved goals\n⊢ True"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
	// Any other failing output defaults to one obligation.
	if got := countUnsolvedGoals("error: whatever"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}
