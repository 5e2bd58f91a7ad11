// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const (
	// candidateDir is the subdirectory of the workspace that receives the
	// materialized source unit.
	candidateDir = "SynthesisEngine"

	// candidateFile is the fixed file name overwritten on every
	// verification. One workspace supports at most one in-flight
	// verification; concurrent calls against the same workspace corrupt
	// each other's input.
	candidateFile = "Main.lean"

	// proofHole marks the unresolved obligation in a LogicalSpec.
	proofHole = ":= by"
)

// executor abstracts checker process execution for testing.
type executor interface {
	// Run executes the checker in dir and returns stdout, stderr, and the
	// exit code. A non-nil error means the process could not be run or was
	// killed; when the context deadline killed it, err wraps
	// context.DeadlineExceeded.
	Run(ctx context.Context, dir, bin string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, dir, bin string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if ctx.Err() != nil {
		return outBuf.String(), errBuf.String(), -1, fmt.Errorf("checker killed: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return outBuf.String(), errBuf.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return outBuf.String(), errBuf.String(), -1, err
	}
	return outBuf.String(), errBuf.String(), 0, nil
}

// Verifier is the verification oracle: it materializes a candidate into
// the Lean workspace and runs the external checker against it. All failure
// modes are converted to StatusErrTool results; Verify never returns an
// error to the caller.
type Verifier struct {
	projectRoot string
	checkerBin  string
	checkerArgs []string
	exec        executor
	log         *slog.Logger
}

// NewVerifier creates a Verifier for the given workspace. A missing
// lakefile.lean is logged but not fatal; verification will surface the
// problem as a tool error.
func NewVerifier(cfg types.VerifierConfig) *Verifier {
	v := &Verifier{
		projectRoot: cfg.ProjectRoot,
		checkerBin:  cfg.CheckerBin,
		checkerArgs: cfg.CheckerArgs,
		exec:        osExecutor{},
		log:         slog.Default().With("component", "verifier"),
	}
	if v.checkerBin == "" {
		v.checkerBin = "lake"
	}
	if len(v.checkerArgs) == 0 {
		v.checkerArgs = []string{"build"}
	}
	if _, err := os.Stat(filepath.Join(v.projectRoot, "lakefile.lean")); err != nil {
		v.log.Warn("lakefile.lean not found in workspace; verification may fail",
			"project_root", v.projectRoot)
	}
	return v
}

// Verify runs the oracle on a candidate: write the source unit, run the
// checker with the timeout, classify the output.
func (v *Verifier) Verify(ctx context.Context, spec types.LogicalSpec, artifact types.Artifact, timeout time.Duration) types.VerificationResult {
	v.log.Info("running verification oracle", "theorem", spec.TheoremName)

	if err := v.writeCandidate(spec, artifact); err != nil {
		v.log.Error("failed to write candidate file", "error", err)
		return types.VerificationResult{
			Status:    types.StatusErrTool,
			Summary:   "IO Error",
			Feedback:  "System error: could not write the candidate file.",
			RawStderr: err.Error(),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := v.exec.Run(runCtx, v.projectRoot, v.checkerBin, v.checkerArgs...)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			v.log.Warn("verification timed out", "timeout", timeout)
			return types.VerificationResult{
				Status:    types.StatusErrTool,
				Summary:   "Timeout",
				Feedback:  "The verification process timed out. The proof might be inefficient or looping.",
				RawStderr: fmt.Sprintf("timeout after %s", timeout),
			}
		}
		v.log.Error("checker process failed to run", "error", err)
		return types.VerificationResult{
			Status:    types.StatusErrTool,
			Summary:   "Subprocess Error",
			Feedback:  fmt.Sprintf("System error: %v", err),
			RawStderr: err.Error(),
		}
	}

	v.log.Debug("checker finished", "exit_code", exitCode, "duration", duration)
	return Classify(stdout, stderr, exitCode)
}

// writeCandidate materializes the self-contained source unit: the spec's
// imports, the candidate's supporting definitions, and the theorem
// statement with its proof hole replaced by the candidate's proof script.
func (v *Verifier) writeCandidate(spec types.LogicalSpec, artifact types.Artifact) error {
	content := buildSource(spec, artifact)

	targetDir := filepath.Join(v.projectRoot, candidateDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating candidate directory: %w", err)
	}

	target := filepath.Join(targetDir, candidateFile)
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	v.log.Debug("wrote candidate source unit", "path", target)
	return nil
}

// buildSource assembles the Lean source for one candidate. The theorem
// text is cut at its proof hole and the candidate's proof script is
// spliced in; everything before the hole (header, definitions, statement)
// is preserved as the spec produced it.
func buildSource(spec types.LogicalSpec, artifact types.Artifact) string {
	var b strings.Builder

	for _, imp := range spec.Imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	b.WriteString("\n")

	if artifact.ProgramCode != "" {
		b.WriteString(artifact.ProgramCode)
		b.WriteString("\n\n")
	}

	theoremBase := spec.LeanCode
	if i := strings.Index(theoremBase, proofHole); i >= 0 {
		theoremBase = theoremBase[:i]
	}
	b.WriteString(strings.TrimRight(theoremBase, " \n"))
	b.WriteString(" := by\n")

	for _, line := range strings.Split(strings.TrimSpace(artifact.ProofScript), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
