// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine drives the bounded sample-verify-refine loop that turns a
// natural-language intent into a verified artifact.
package refine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// ErrBudgetExhausted is returned by Solve when the step budget ran out
// before any candidate verified. It is distinct from fatal setup errors
// (formalize/embed failures), which are returned as ordinary wrapped
// errors.
var ErrBudgetExhausted = errors.New("refinement step budget exhausted")

// toolErrorFeedback is the generic history entry for tool failures; there
// is no proof-level feedback to relay.
const toolErrorFeedback = "System tool failure. Optimize proof efficiency and retry."

// Formalizer turns an intent into a trace specification. A failure here is
// fatal to the solve call; the orchestrator does not retry it.
type Formalizer interface {
	Formalize(ctx context.Context, intent string) (types.TraceSpec, error)
}

// Embedder lifts a trace specification into a logical one. Failures are
// fatal, same as the formalizer's.
type Embedder interface {
	Embed(spec types.TraceSpec) (types.LogicalSpec, error)
}

// Proposer samples one candidate artifact given the spec and the history
// snapshot. The snapshot is the proposer's to read, never to keep or
// mutate.
type Proposer interface {
	Propose(ctx context.Context, spec types.LogicalSpec, history []types.HistoryEntry) (types.Artifact, error)
}

// Oracle checks a candidate against the spec. It never returns an error:
// every failure mode is converted to a StatusErrTool result.
type Oracle interface {
	Verify(ctx context.Context, spec types.LogicalSpec, artifact types.Artifact, timeout time.Duration) types.VerificationResult
}

// PotentialFunc computes the convergence metric Φ for one iteration.
type PotentialFunc func(artifact types.Artifact, result *types.VerificationResult) float64

// Observer receives one notification per loop iteration, after
// classification. Used to persist convergence series; errors there must
// not disturb the loop, so the interface has no error return.
type Observer interface {
	ObserveIteration(step int, result types.VerificationResult, potential float64)
}

// sleep is swapped out in tests to avoid real backoff delays.
var sleep = time.Sleep

// Orchestrator owns one solve call at a time: the bounded refinement loop,
// its history, and its metrics. Instances are not safe for concurrent use;
// run concurrent solves on separate orchestrators with separate verifier
// workspaces.
type Orchestrator struct {
	cfg        types.RefineConfig
	formalizer Formalizer
	embedder   Embedder
	proposer   Proposer
	oracle     Oracle
	potential  PotentialFunc
	observer   Observer
	log        *slog.Logger

	report types.SolveResult
}

// New creates an Orchestrator. The observer may be nil.
func New(cfg types.RefineConfig, formalizer Formalizer, embedder Embedder, proposer Proposer, oracle Oracle, potential PotentialFunc, observer Observer) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		formalizer: formalizer,
		embedder:   embedder,
		proposer:   proposer,
		oracle:     oracle,
		potential:  potential,
		observer:   observer,
		log:        slog.Default().With("component", "orchestrator"),
	}
}

// Solve runs formalize, embed, then the refinement loop. On success the
// verified artifact is returned and belongs to the caller. When the step
// budget runs out the error is ErrBudgetExhausted; the last attempted
// state stays available through Report for diagnostics.
//
// The oracle's acceptance is authoritative: a StatusOK result terminates
// the loop even if the candidate still contains admitted markers (in which
// case Φ stays above zero). The divergence is deliberate and surfaced in
// the metrics rather than reconciled here.
func (o *Orchestrator) Solve(ctx context.Context, intent string) (*types.Artifact, error) {
	o.log.Info("starting synthesis", "intent", truncate(intent, 50))
	o.report = types.SolveResult{Intent: intent}

	traceSpec, err := o.formalizer.Formalize(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("formalizing intent: %w", err)
	}
	o.report.TraceSpec = traceSpec
	o.log.Info("generated trace specification", "name", traceSpec.Name)

	logicalSpec, err := o.embedder.Embed(traceSpec)
	if err != nil {
		return nil, fmt.Errorf("embedding trace spec: %w", err)
	}
	o.report.Logical = logicalSpec
	o.log.Info("embedded logical specification", "theorem", logicalSpec.TheoremName)

	artifact, err := o.refinementLoop(ctx, logicalSpec)
	if err != nil {
		return nil, err
	}

	o.report.Artifact = artifact
	o.report.Verified = true
	o.log.Info("synthesis successful", "steps", o.report.Steps)
	return artifact, nil
}

// refinementLoop runs the bounded propose-verify-classify loop. History is
// append-only and private to this call; proposers see snapshots.
func (o *Orchestrator) refinementLoop(ctx context.Context, spec types.LogicalSpec) (*types.Artifact, error) {
	var history []types.HistoryEntry

	for step := 0; step < o.cfg.MaxRefinementSteps; step++ {
		o.log.Info("refinement step", "step", step)
		o.report.Steps = step + 1

		candidate, err := o.proposer.Propose(ctx, spec, slices.Clone(history))
		if err != nil {
			return nil, fmt.Errorf("sampling candidate at step %d: %w", step, err)
		}

		result := o.oracle.Verify(ctx, spec, candidate, o.cfg.TimeoutPerVerification)

		phi := o.potential(candidate, &result)
		o.report.Log.Record(step, phi)
		if o.observer != nil {
			o.observer.ObserveIteration(step, result, phi)
		}
		o.log.Debug("iteration classified",
			"step", step, "status", result.Status, "summary", result.Summary, "potential", phi)

		switch result.Status {
		case types.StatusOK:
			return &candidate, nil

		case types.StatusErrLogical:
			o.log.Warn("logical error", "step", step, "summary", result.Summary)
			history = append(history, types.HistoryEntry{
				Step:     step,
				Artifact: &candidate,
				Feedback: result.Feedback,
				RawError: result.RawStderr,
			})

		case types.StatusErrTool:
			o.log.Warn("tool error, backing off", "step", step, "summary", result.Summary)
			history = append(history, types.HistoryEntry{
				Step:     step,
				Feedback: toolErrorFeedback,
				RawError: result.RawStderr,
			})
			sleep(o.backoffDelay(step))
		}
	}

	o.report.History = history
	o.log.Error("exceeded max refinement steps", "max", o.cfg.MaxRefinementSteps)
	return nil, ErrBudgetExhausted
}

// backoffDelay returns backoffFactor^(step+1) seconds. The exponent is the
// step index, not a separate tool-error counter: every outcome advances
// the step, so repeated tool failures back off progressively harder.
func (o *Orchestrator) backoffDelay(step int) time.Duration {
	seconds := math.Pow(o.cfg.BackoffFactor, float64(step+1))
	return time.Duration(seconds * float64(time.Second))
}

// Report returns everything the last Solve call produced, including the
// convergence series and, on failure, the full attempt history.
func (o *Orchestrator) Report() types.SolveResult {
	return o.report
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
