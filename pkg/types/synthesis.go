// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types shared across synthesis stages.
package types

// Intent is the opaque natural-language requirement supplied by the user.
type Intent = string

// TraceSpec is a named set of informal behavioral predicates extracted
// from an Intent by the formalizer. Each predicate is a raw string of the
// form "<Kind>: <definition>". Created once per solve call, read-only
// afterward.
type TraceSpec struct {
	Name       string   `json:"name" yaml:"name"`
	Predicates []string `json:"predicates" yaml:"predicates"`
}

// LogicalSpec is a formal theorem statement derived from a TraceSpec.
// LeanCode contains the full source with an unresolved proof obligation
// (a `sorry` hole) that a candidate proof script replaces at verification
// time.
type LogicalSpec struct {
	TheoremName string   `json:"theorem_name" yaml:"theorem_name"`
	LeanCode    string   `json:"lean_code" yaml:"lean_code"`
	Imports     []string `json:"imports" yaml:"imports"`
}

// Artifact is a candidate solution proposed by the sampling backend: an
// implementation plus the proof script meant to discharge the spec's
// obligation. Artifacts are plain values; the one returned by a successful
// solve call belongs to the caller.
type Artifact struct {
	ProgramCode string `json:"program_code" yaml:"program_code"`
	ProofScript string `json:"proof_script" yaml:"proof_script"`
	Language    string `json:"language" yaml:"language"`
}

// Status is the three-way outcome of a verification attempt.
type Status string

const (
	// StatusOK means the checker accepted the candidate.
	StatusOK Status = "ok"

	// StatusErrLogical means the toolchain functioned but the candidate is
	// semantically wrong; recoverable by re-prompting with feedback.
	StatusErrLogical Status = "err_logical"

	// StatusErrTool means the toolchain itself failed or stalled;
	// recoverable by backoff and retry.
	StatusErrTool Status = "err_tool"
)

// VerificationResult is the classified outcome of one checker invocation.
//
// UnsolvedGoals is zero exactly when Status is StatusOK for results built
// by the classifier; results assembled elsewhere are not forced to hold
// that relation.
type VerificationResult struct {
	Status        Status `json:"status" yaml:"status"`
	Summary       string `json:"summary" yaml:"summary"`
	Feedback      string `json:"feedback" yaml:"feedback"`
	RawStdout     string `json:"raw_stdout,omitempty" yaml:"raw_stdout,omitempty"`
	RawStderr     string `json:"raw_stderr,omitempty" yaml:"raw_stderr,omitempty"`
	UnsolvedGoals int    `json:"unsolved_goals" yaml:"unsolved_goals"`
}

// HistoryEntry records one refinement iteration: the candidate that was
// tried (nil when a tool error produced no usable candidate context), the
// structured feedback handed back to the sampler, and the raw error text
// for diagnostics. The orchestrator owns the history; samplers receive
// snapshots only.
type HistoryEntry struct {
	Step     int       `json:"step" yaml:"step"`
	Artifact *Artifact `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Feedback string    `json:"feedback" yaml:"feedback"`
	RawError string    `json:"raw_error,omitempty" yaml:"raw_error,omitempty"`
}

// SynthesisLog holds the per-iteration convergence series recorded during
// one solve call: parallel slices of iteration index and potential value.
// Write-only from the orchestrator's perspective; external reporting reads
// it afterward.
type SynthesisLog struct {
	Iterations []int     `json:"iterations" yaml:"iterations"`
	Potentials []float64 `json:"potentials" yaml:"potentials"`
}

// Record appends one observation to the log.
func (l *SynthesisLog) Record(iteration int, potential float64) {
	l.Iterations = append(l.Iterations, iteration)
	l.Potentials = append(l.Potentials, potential)
}

// Len returns the number of recorded observations.
func (l *SynthesisLog) Len() int {
	return len(l.Iterations)
}

// SolveResult bundles everything a solve run produced, for persistence and
// output files: the specs, the final artifact (nil on failure), and the
// convergence series.
type SolveResult struct {
	Intent    string       `json:"intent" yaml:"intent"`
	TraceSpec TraceSpec    `json:"trace_spec" yaml:"trace_spec"`
	Logical   LogicalSpec  `json:"logical_spec" yaml:"logical_spec"`
	Artifact  *Artifact    `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Steps     int          `json:"steps" yaml:"steps"`
	Verified  bool         `json:"verified" yaml:"verified"`
	Log       SynthesisLog `json:"log" yaml:"log"`

	// History is the full attempt trail, retained for diagnostics when
	// the run failed.
	History []HistoryEntry `json:"history,omitempty" yaml:"history,omitempty"`
}
