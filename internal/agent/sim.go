// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"strings"
)

// SimulationBackend returns deterministic canned responses without any
// network access. It exists for offline runs and tests and is selected
// explicitly through configuration, never by probing the environment.
//
// When a script is supplied the responses are consumed in order; once the
// script is exhausted, or when no script was given, the reply is derived
// from the prompt's role marker.
type SimulationBackend struct {
	script []string
	next   int
}

// NewSimulationBackend creates an unscripted simulation backend.
func NewSimulationBackend() *SimulationBackend {
	return &SimulationBackend{}
}

// NewScriptedBackend creates a simulation backend that replays the given
// responses in order.
func NewScriptedBackend(responses ...string) *SimulationBackend {
	return &SimulationBackend{script: responses}
}

// Complete returns the next scripted response, or a canned reply matched
// to the prompt's role.
func (s *SimulationBackend) Complete(_ context.Context, prompt string) (string, error) {
	if s.next < len(s.script) {
		resp := s.script[s.next]
		s.next++
		return resp, nil
	}

	if strings.Contains(prompt, "behavioral trace predicates") {
		return "Name: SimulatedSpec\n" +
			"Mono: the observed value never decreases across the trace\n" +
			"Safe: the queue size stays within its configured bound\n", nil
	}

	return "```json\n" +
		`{"program": "", "proof": "intro trace\nsorry"}` + "\n" +
		"```\n", nil
}
