// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the synthesis-engine CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/synthesis-engine/internal/secrets"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the synthesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "synthesis-engine",
	Short: "Iterative synthesis of verified artifacts against a Lean checker",
	Long: `synthesis-engine turns a natural-language requirement into a candidate
implementation plus correctness proof, by repeatedly sampling an LLM backend
and checking each candidate with the Lean 4 compiler until verification
succeeds or the step budget is exhausted.

The main entry point is the solve subcommand. verify checks a single
existing candidate file, and runs inspects recorded synthesis runs.`,
}

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle: the closure calls configureLogging, which
	// reads rootCmd's flags.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		configureLogging()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./synthesis-engine.yaml or ~/.config/synthesis-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("synthesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "synthesis-engine"))
		}
	}

	viper.SetEnvPrefix("SYNTHESIS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func configureLogging() {
	level := slog.LevelInfo
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// engineConfig assembles the full engine configuration from the config
// file, environment, and secrets, with documented defaults applied.
func engineConfig() types.SynthesisConfig {
	cfg := types.SynthesisConfig{
		AI: types.AIConfig{
			Backend:    types.BackendKind(viper.GetString("ai.backend")),
			Model:      viper.GetString("ai.model"),
			APIKey:     viper.GetString("ai.api_key"),
			BaseURL:    viper.GetString("ai.base_url"),
			MaxTokens:  viper.GetInt("ai.max_tokens"),
			MaxRetries: viper.GetInt("ai.max_retries"),
		},
		Verifier: types.VerifierConfig{
			ProjectRoot: viper.GetString("verifier.project_root"),
			CheckerBin:  viper.GetString("verifier.checker_bin"),
			CheckerArgs: viper.GetStringSlice("verifier.checker_args"),
		},
		Refine: types.RefineConfig{
			MaxRefinementSteps:     viper.GetInt("refine.max_refinement_steps"),
			TimeoutPerVerification: viper.GetDuration("refine.timeout_per_verification"),
			BackoffFactor:          viper.GetFloat64("refine.backoff_factor"),
		},
		Potential: types.PotentialConfig{
			WeightGoals:  viper.GetFloat64("potential.weight_goals"),
			WeightSorry:  viper.GetFloat64("potential.weight_sorry"),
			PenaltyError: viper.GetFloat64("potential.penalty_error"),
		},
		RunLog: types.RunLogConfig{
			RunsDir: viper.GetString("run_log.runs_dir"),
		},
		OutputDir: viper.GetString("output_dir"),
	}

	switch cfg.AI.Backend {
	case types.BackendClaude:
		cfg.AI.APIKey = secretDefault("anthropic-api-key", cfg.AI.APIKey)
	case types.BackendOpenAI:
		cfg.AI.APIKey = secretDefault("openai-api-key", cfg.AI.APIKey)
	}

	return cfg.WithDefaults()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
