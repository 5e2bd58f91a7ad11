// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding lifts behavioral trace specifications into Lean 4
// proof obligations: each predicate maps to a term from the trace library,
// and the conjunction becomes a theorem with an unresolved proof hole.
package embedding

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// predicateTemplates maps standard predicate kinds to their Lean terms in
// the trace library.
var predicateTemplates = map[string]string{
	"Mono":    "Trace.is_monotonic trace (fun s => s.val)",
	"Live":    "LTL.eventually (fun s => s.response_received) trace",
	"Safe":    "LTL.always (fun s => s.queue_size <= 10) trace",
	"Consist": "Trace.linearizable trace",
}

// specImports are the trace-library modules every embedded theorem needs.
var specImports = []string{"FormalTrace.Trace", "FormalTrace.LTL"}

// leanHeader declares the state type the predicate templates refer to.
const leanHeader = `open FormalTrace

structure State where
  val : Nat
  queue_size : Nat
  response_received : Bool
  deriving Repr, DecidableEq
`

// Mapper implements the embedding step: TraceSpec to LogicalSpec. The
// mapping is deterministic; the same TraceSpec always yields the same
// theorem.
type Mapper struct {
	log *slog.Logger
}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{log: slog.Default().With("component", "embedding")}
}

// Embed translates each "<Kind>: <definition>" predicate through the
// template table and assembles the conjunction into a named theorem with
// a `sorry` hole. Unknown kinds degrade to trivial `True` conjuncts
// rather than failing: the candidate proof still has to discharge the
// known obligations.
func (m *Mapper) Embed(spec types.TraceSpec) (types.LogicalSpec, error) {
	if spec.Name == "" {
		return types.LogicalSpec{}, fmt.Errorf("trace spec has no name")
	}

	theoremName := spec.Name + "_Correctness"

	var props []string
	for _, raw := range spec.Predicates {
		kind, _, found := strings.Cut(raw, ":")
		if !found {
			m.log.Warn("unparsed predicate, using trivial placeholder", "predicate", raw)
			props = append(props, "True")
			continue
		}
		kind = strings.TrimSpace(kind)
		if term, ok := predicateTemplates[kind]; ok {
			props = append(props, term)
			continue
		}
		m.log.Warn("unknown predicate kind, using trivial placeholder", "kind", kind)
		props = append(props, "True")
	}

	conjunction := "True"
	if len(props) > 0 {
		conjunction = strings.Join(props, " ∧ ")
	}

	leanCode := fmt.Sprintf(`%s
theorem %s (trace : List State) :
  %s := by
  sorry
`, leanHeader, theoremName, conjunction)

	m.log.Info("embedded trace spec", "theorem", theoremName, "predicates", len(spec.Predicates))

	return types.LogicalSpec{
		TheoremName: theoremName,
		LeanCode:    leanCode,
		Imports:     append([]string(nil), specImports...),
	}, nil
}
