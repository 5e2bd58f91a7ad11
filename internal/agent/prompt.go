// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// formalizePromptTmpl asks the model to turn a natural-language intent
// into named behavioral trace predicates, one per line, in the fixed
// "<Kind>: <definition>" form the embedding stage expects.
var formalizePromptTmpl = template.Must(template.New("formalize").Parse(`You are a formal specification engineer. Extract behavioral trace predicates from the following requirement.

Requirement:
{{.Intent}}

Respond with:
- a first line of the form "Name: <UpperCamelCaseName>" naming the specification
- one line per property of the form "<Kind>: <definition>", where Kind is one of:
  - Mono: a monotonicity property (a value never decreases/increases)
  - Live: a liveness property (something eventually happens)
  - Safe: a safety property (something is always true)
  - Consist: a consistency property (operations appear atomic)

Do not include any text besides the name line and the predicate lines.
`))

// synthesizePromptTmpl asks the model for a candidate artifact against a
// theorem statement, replaying the accumulated attempt history so the
// model can refine rather than restart.
var synthesizePromptTmpl = template.Must(template.New("synthesize").Parse(`You are a Lean 4 proof engineer. Produce a candidate that discharges the proof obligation below.

Theorem to prove (the hole after ":= by" is yours to fill):
{{.LeanCode}}
{{if .History}}
Previous attempts and verifier feedback, oldest first:
{{range .History}}--- attempt {{.Step}} ---
{{if .Artifact}}proof script:
{{.Artifact.ProofScript}}
{{end}}verifier feedback:
{{.Feedback}}
{{end}}{{end}}
Respond with a JSON object with two string fields:
- "program": supporting Lean definitions needed by the proof (may be empty)
- "proof": the tactic script that replaces the hole

Do not include any text outside the JSON object.
`))

// renderFormalizePrompt executes the formalizer template for one intent.
func renderFormalizePrompt(intent string) (string, error) {
	var buf bytes.Buffer
	err := formalizePromptTmpl.Execute(&buf, struct{ Intent string }{Intent: intent})
	return buf.String(), err
}

// renderSynthesizePrompt executes the synthesizer template for one spec
// and history snapshot.
func renderSynthesizePrompt(spec types.LogicalSpec, history []types.HistoryEntry) (string, error) {
	var buf bytes.Buffer
	err := synthesizePromptTmpl.Execute(&buf, struct {
		LeanCode string
		History  []types.HistoryEntry
	}{
		LeanCode: spec.LeanCode,
		History:  history,
	})
	return buf.String(), err
}
