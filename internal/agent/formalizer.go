// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// predicateLinePattern matches "<Kind>: <definition>" lines, with optional
// list bullets the model may prepend despite instructions.
var predicateLinePattern = regexp.MustCompile(`^\s*(?:[-*]\s*)?([A-Za-z]+):\s*(.+)$`)

// Formalizer translates a natural-language intent into a TraceSpec by
// sampling the backend once and parsing predicate lines out of the reply.
type Formalizer struct {
	backend    Backend
	maxRetries int
	log        *slog.Logger
}

// NewFormalizer creates a formalizer on the given backend.
func NewFormalizer(backend Backend, cfg types.AIConfig) *Formalizer {
	return &Formalizer{
		backend:    backend,
		maxRetries: cfg.MaxRetries,
		log:        slog.Default().With("component", "formalizer"),
	}
}

// Formalize extracts a named set of behavioral predicates from the intent.
// A reply with no parseable predicate lines is an error: the rest of the
// pipeline has nothing to embed.
func (f *Formalizer) Formalize(ctx context.Context, intent string) (types.TraceSpec, error) {
	prompt, err := renderFormalizePrompt(intent)
	if err != nil {
		return types.TraceSpec{}, fmt.Errorf("rendering formalize prompt: %w", err)
	}

	response, err := completeWithRetry(ctx, f.backend, prompt, f.maxRetries)
	if err != nil {
		return types.TraceSpec{}, fmt.Errorf("sampling formalizer backend: %w", err)
	}

	spec := parseTraceSpec(response)
	if len(spec.Predicates) == 0 {
		return types.TraceSpec{}, fmt.Errorf("formalizer reply contained no predicate lines:\n%s", response)
	}

	f.log.Info("formalized intent", "name", spec.Name, "predicates", len(spec.Predicates))
	return spec, nil
}

// parseTraceSpec scans a reply for the name line and "<Kind>: <text>"
// predicate lines. Lines that match neither are ignored.
func parseTraceSpec(response string) types.TraceSpec {
	spec := types.TraceSpec{Name: "UnnamedSpec"}

	for _, line := range strings.Split(response, "\n") {
		m := predicateLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind, rest := m[1], strings.TrimSpace(m[2])
		if strings.EqualFold(kind, "name") {
			if name := sanitizeName(rest); name != "" {
				spec.Name = name
			}
			continue
		}
		spec.Predicates = append(spec.Predicates, kind+": "+rest)
	}

	return spec
}

// nameCharPattern strips everything that cannot appear in a Lean
// identifier derived from the spec name.
var nameCharPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitizeName(raw string) string {
	name := nameCharPattern.ReplaceAllString(raw, "")
	if name == "" {
		return ""
	}
	// A leading digit would not be a valid identifier.
	if name[0] >= '0' && name[0] <= '9' {
		name = "Spec" + name
	}
	return name
}
