// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent holds the sampling backends and the formalizer and
// synthesizer roles built on top of them. A backend is a single text
// completion capability; the roles are pure prompt builders plus response
// parsers, so role behavior composes with any backend.
package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// Backend is the stochastic sampling capability: given a prompt, return
// the model's raw text response.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewBackend constructs the backend selected by the config. The kind is
// an explicit configuration decision made by the caller; nothing here
// probes the environment.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude backend requires an API key")
		}
		return NewClaudeBackend(cfg), nil
	case types.BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key")
		}
		return NewOpenAIBackend(cfg), nil
	case types.BackendSimulation:
		return NewSimulationBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q (supported: claude, openai, simulation)", cfg.Backend)
	}
}

// backoffBase controls the base duration for completion retry backoff.
// Tests override this to avoid real sleeps.
var backoffBase = time.Second

// completeWithRetry calls the backend with exponential backoff on error.
func completeWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
