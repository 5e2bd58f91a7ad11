// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"strings"
	"testing"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

func TestEmbedKnownPredicates(t *testing.T) {
	spec := types.TraceSpec{
		Name: "BoundedQueue",
		Predicates: []string{
			"Mono: the head index never decreases",
			"Safe: the queue size stays within bounds",
		},
	}

	logical, err := NewMapper().Embed(spec)
	if err != nil {
		t.Fatal(err)
	}

	if logical.TheoremName != "BoundedQueue_Correctness" {
		t.Errorf("theorem name = %q, want BoundedQueue_Correctness", logical.TheoremName)
	}
	for _, want := range []string{
		"Trace.is_monotonic trace",
		"LTL.always",
		" ∧ ",
		":= by",
		"sorry",
		"structure State where",
	} {
		if !strings.Contains(logical.LeanCode, want) {
			t.Errorf("lean code missing %q:\n%s", want, logical.LeanCode)
		}
	}
	if len(logical.Imports) == 0 {
		t.Error("imports should not be empty")
	}
}

func TestEmbedDeterministic(t *testing.T) {
	spec := types.TraceSpec{Name: "S", Predicates: []string{"Live: responses arrive", "Consist: atomic ops"}}
	m := NewMapper()

	first, err := m.Embed(spec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Embed(spec)
	if err != nil {
		t.Fatal(err)
	}

	if first.LeanCode != second.LeanCode || first.TheoremName != second.TheoremName {
		t.Error("embedding the same spec twice must yield identical output")
	}
}

func TestEmbedUnknownKindsDegrade(t *testing.T) {
	spec := types.TraceSpec{
		Name: "S",
		Predicates: []string{
			"Frob: something exotic",
			"no colon at all",
		},
	}

	logical, err := NewMapper().Embed(spec)
	if err != nil {
		t.Fatal(err)
	}
	// Unknown and unparsed predicates become trivial placeholders rather
	// than failing the embed.
	if !strings.Contains(logical.LeanCode, "True ∧ True") {
		t.Errorf("lean code should carry trivial placeholders:\n%s", logical.LeanCode)
	}
}

func TestEmbedEmptyPredicates(t *testing.T) {
	logical, err := NewMapper().Embed(types.TraceSpec{Name: "S"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logical.LeanCode, "True := by") {
		t.Errorf("empty spec should embed the trivial obligation:\n%s", logical.LeanCode)
	}
}

func TestEmbedRequiresName(t *testing.T) {
	if _, err := NewMapper().Embed(types.TraceSpec{}); err == nil {
		t.Fatal("want error for a nameless spec")
	}
}
