// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// stubExecutor returns canned checker output and records the invocation.
type stubExecutor struct {
	stdout   string
	stderr   string
	exitCode int
	err      error

	gotDir  string
	gotBin  string
	gotArgs []string
}

func (s *stubExecutor) Run(_ context.Context, dir, bin string, args ...string) (string, string, int, error) {
	s.gotDir = dir
	s.gotBin = bin
	s.gotArgs = args
	return s.stdout, s.stderr, s.exitCode, s.err
}

func testSpec() types.LogicalSpec {
	return types.LogicalSpec{
		TheoremName: "Test_Correctness",
		LeanCode:    "theorem Test_Correctness (trace : List State) :\n  True := by\n  sorry\n",
		Imports:     []string{"FormalTrace.Trace"},
	}
}

func testVerifier(t *testing.T, exec executor) *Verifier {
	t.Helper()
	v := NewVerifier(types.VerifierConfig{ProjectRoot: t.TempDir()})
	v.exec = exec
	return v
}

func TestVerifySuccess(t *testing.T) {
	stub := &stubExecutor{stdout: "Building Test_Correctness... [OK]", exitCode: 0}
	v := testVerifier(t, stub)

	result := v.Verify(context.Background(), testSpec(), types.Artifact{ProofScript: "trivial"}, time.Second)

	if result.Status != types.StatusOK {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusOK)
	}
	if stub.gotBin != "lake" {
		t.Errorf("checker bin = %q, want lake", stub.gotBin)
	}
	if len(stub.gotArgs) != 1 || stub.gotArgs[0] != "build" {
		t.Errorf("checker args = %v, want [build]", stub.gotArgs)
	}
}

func TestVerifyDelegatesToClassifier(t *testing.T) {
	stub := &stubExecutor{stdout: "error: unsolved goals\ncase g1\n⊢ True\ncase g2\n⊢ True", exitCode: 1}
	v := testVerifier(t, stub)

	result := v.Verify(context.Background(), testSpec(), types.Artifact{ProofScript: "sorry"}, time.Second)

	if result.Status != types.StatusErrLogical {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusErrLogical)
	}
	if result.UnsolvedGoals != 2 {
		t.Errorf("unsolved goals = %d, want 2", result.UnsolvedGoals)
	}
}

func TestVerifyTimeout(t *testing.T) {
	stub := &stubExecutor{err: fmt.Errorf("checker killed: %w", context.DeadlineExceeded)}
	v := testVerifier(t, stub)

	result := v.Verify(context.Background(), testSpec(), types.Artifact{ProofScript: "simp"}, time.Second)

	if result.Status != types.StatusErrTool {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusErrTool)
	}
	if result.Summary != "Timeout" {
		t.Errorf("summary = %q, want Timeout", result.Summary)
	}
}

func TestVerifySubprocessError(t *testing.T) {
	stub := &stubExecutor{err: fmt.Errorf("exec: lake: executable file not found in $PATH")}
	v := testVerifier(t, stub)

	result := v.Verify(context.Background(), testSpec(), types.Artifact{ProofScript: "simp"}, time.Second)

	if result.Status != types.StatusErrTool {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusErrTool)
	}
	if result.Summary != "Subprocess Error" {
		t.Errorf("summary = %q, want Subprocess Error", result.Summary)
	}
}

func TestVerifyIOError(t *testing.T) {
	// Point the workspace inside a regular file so the candidate directory
	// cannot be created.
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewVerifier(types.VerifierConfig{ProjectRoot: filepath.Join(blocker, "workspace")})
	v.exec = &stubExecutor{}

	result := v.Verify(context.Background(), testSpec(), types.Artifact{ProofScript: "simp"}, time.Second)

	if result.Status != types.StatusErrTool {
		t.Fatalf("status = %v, want %v", result.Status, types.StatusErrTool)
	}
	if result.Summary != "IO Error" {
		t.Errorf("summary = %q, want IO Error", result.Summary)
	}
}

func TestVerifyWritesCandidateFile(t *testing.T) {
	stub := &stubExecutor{exitCode: 0}
	v := testVerifier(t, stub)

	artifact := types.Artifact{
		ProgramCode: "def bound : Nat := 10",
		ProofScript: "intro trace\nsimp",
	}
	v.Verify(context.Background(), testSpec(), artifact, time.Second)

	data, err := os.ReadFile(filepath.Join(v.projectRoot, candidateDir, candidateFile))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"import FormalTrace.Trace",
		"def bound : Nat := 10",
		"theorem Test_Correctness",
		":= by\n  intro trace\n  simp",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("candidate file missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "sorry") {
		t.Errorf("candidate file should not retain the proof hole:\n%s", content)
	}
}

func TestBuildSourceCutsAtProofHole(t *testing.T) {
	src := buildSource(testSpec(), types.Artifact{ProofScript: "trivial"})

	if strings.Count(src, ":= by") != 1 {
		t.Errorf("source should contain exactly one proof introduction:\n%s", src)
	}
	if !strings.HasSuffix(strings.TrimSpace(src), "trivial") {
		t.Errorf("source should end with the candidate proof:\n%s", src)
	}
}
