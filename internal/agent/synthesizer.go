// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// jsonFencePattern captures a ```json fenced block.
var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*\\n(.*?)```")

// leanFencePattern captures a ```lean fenced block, the common shape of a
// reply that ignored the JSON instruction.
var leanFencePattern = regexp.MustCompile("(?s)```lean\\s*\\n(.*?)```")

// jsonObjectPattern captures a bare top-level JSON object.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Synthesizer proposes candidate artifacts against a logical spec,
// conditioning each sample on the accumulated attempt history. Propose
// never fails on malformed model output: a degenerate reply still yields
// an artifact (the raw text as proof script) and the verifier's feedback
// drives the correction.
type Synthesizer struct {
	backend    Backend
	maxRetries int
	log        *slog.Logger
}

// NewSynthesizer creates a synthesizer on the given backend.
func NewSynthesizer(backend Backend, cfg types.AIConfig) *Synthesizer {
	return &Synthesizer{
		backend:    backend,
		maxRetries: cfg.MaxRetries,
		log:        slog.Default().With("component", "synthesizer"),
	}
}

// candidateReply is the JSON shape requested from the model.
type candidateReply struct {
	Program string `json:"program"`
	Proof   string `json:"proof"`
}

// Propose samples one candidate artifact. The history slice is a snapshot
// owned by the caller; it is only read here.
func (s *Synthesizer) Propose(ctx context.Context, spec types.LogicalSpec, history []types.HistoryEntry) (types.Artifact, error) {
	prompt, err := renderSynthesizePrompt(spec, history)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("rendering synthesize prompt: %w", err)
	}

	response, err := completeWithRetry(ctx, s.backend, prompt, s.maxRetries)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("sampling synthesizer backend: %w", err)
	}

	artifact := parseArtifact(response)
	s.log.Debug("proposed candidate",
		"theorem", spec.TheoremName,
		"proof_chars", len(artifact.ProofScript),
		"history_len", len(history))
	return artifact, nil
}

// parseArtifact extracts program and proof from a model reply. Preference
// order: fenced JSON, bare JSON object, fenced Lean block as proof, raw
// text as proof.
func parseArtifact(response string) types.Artifact {
	artifact := types.Artifact{Language: "lean"}

	raw := ""
	if m := jsonFencePattern.FindStringSubmatch(response); m != nil {
		raw = m[1]
	} else if m := jsonObjectPattern.FindString(response); m != "" {
		raw = m
	}

	if raw != "" {
		var reply candidateReply
		if err := json.Unmarshal([]byte(raw), &reply); err == nil && reply.Proof != "" {
			artifact.ProgramCode = strings.TrimSpace(reply.Program)
			artifact.ProofScript = strings.TrimSpace(reply.Proof)
			return artifact
		}
	}

	if m := leanFencePattern.FindStringSubmatch(response); m != nil {
		artifact.ProofScript = strings.TrimSpace(m[1])
		return artifact
	}

	artifact.ProofScript = strings.TrimSpace(response)
	return artifact
}
