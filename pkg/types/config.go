// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// BackendKind selects the sampling backend implementation. The kind is
// resolved once from configuration by the caller; request logic never
// probes the environment to decide.
type BackendKind string

const (
	BackendClaude     BackendKind = "claude"
	BackendOpenAI     BackendKind = "openai"
	BackendSimulation BackendKind = "simulation"
)

// AIConfig holds shared settings for stages that sample a generative model.
type AIConfig struct {
	// Backend selects the sampling implementation: claude, openai, or
	// simulation.
	Backend BackendKind `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the live backends.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible local
	// servers. Empty means the backend's default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens bounds the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// VerifierConfig holds settings for the verification oracle.
type VerifierConfig struct {
	// ProjectRoot is the Lean workspace directory containing lakefile.lean.
	// One workspace supports at most one in-flight verification; concurrent
	// solve sessions need separate workspaces.
	ProjectRoot string `json:"project_root" yaml:"project_root"`

	// CheckerBin is the checker executable (default "lake").
	CheckerBin string `json:"checker_bin" yaml:"checker_bin"`

	// CheckerArgs are the arguments passed to the checker (default
	// ["build"]).
	CheckerArgs []string `json:"checker_args" yaml:"checker_args"`
}

// RefineConfig holds settings for the refinement orchestrator.
type RefineConfig struct {
	// MaxRefinementSteps bounds the sample-verify loop (default 15).
	MaxRefinementSteps int `json:"max_refinement_steps" yaml:"max_refinement_steps"`

	// TimeoutPerVerification bounds each checker invocation (default 30s).
	TimeoutPerVerification time.Duration `json:"timeout_per_verification" yaml:"timeout_per_verification"`

	// BackoffFactor is the exponential base for the delay after a tool
	// error: the orchestrator sleeps BackoffFactor^(step+1) seconds
	// (default 1.5, must be > 1).
	BackoffFactor float64 `json:"backoff_factor" yaml:"backoff_factor"`
}

// PotentialConfig holds the weights of the convergence potential.
type PotentialConfig struct {
	// WeightGoals scales the unsolved-goal count (default 1.0).
	WeightGoals float64 `json:"weight_goals" yaml:"weight_goals"`

	// WeightSorry scales the admitted-marker count (default 2.0).
	WeightSorry float64 `json:"weight_sorry" yaml:"weight_sorry"`

	// PenaltyError is the flat penalty for tool errors and unparseable
	// logical errors (default 5.0).
	PenaltyError float64 `json:"penalty_error" yaml:"penalty_error"`
}

// RunLogConfig holds settings for synthesis run persistence.
type RunLogConfig struct {
	// RunsDir is the directory holding the run database (default "runs").
	RunsDir string `json:"runs_dir" yaml:"runs_dir"`
}

// SynthesisConfig groups all stage configurations for one engine instance.
type SynthesisConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Verifier  VerifierConfig  `json:"verifier" yaml:"verifier"`
	Refine    RefineConfig    `json:"refine" yaml:"refine"`
	Potential PotentialConfig `json:"potential" yaml:"potential"`
	RunLog    RunLogConfig    `json:"run_log" yaml:"run_log"`

	// OutputDir is where successful artifacts are written (default
	// "output/artifacts").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// WithDefaults returns a copy of the config with zero values replaced by
// the documented defaults.
func (c SynthesisConfig) WithDefaults() SynthesisConfig {
	if c.AI.Backend == "" {
		c.AI.Backend = BackendSimulation
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 4096
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = 3
	}
	if c.Verifier.CheckerBin == "" {
		c.Verifier.CheckerBin = "lake"
	}
	if len(c.Verifier.CheckerArgs) == 0 {
		c.Verifier.CheckerArgs = []string{"build"}
	}
	if c.Refine.MaxRefinementSteps <= 0 {
		c.Refine.MaxRefinementSteps = 15
	}
	if c.Refine.TimeoutPerVerification <= 0 {
		c.Refine.TimeoutPerVerification = 30 * time.Second
	}
	if c.Refine.BackoffFactor <= 1 {
		c.Refine.BackoffFactor = 1.5
	}
	if c.Potential.WeightGoals == 0 {
		c.Potential.WeightGoals = 1.0
	}
	if c.Potential.WeightSorry == 0 {
		c.Potential.WeightSorry = 2.0
	}
	if c.Potential.PenaltyError == 0 {
		c.Potential.PenaltyError = 5.0
	}
	if c.RunLog.RunsDir == "" {
		c.RunLog.RunsDir = "runs"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output/artifacts"
	}
	return c
}
