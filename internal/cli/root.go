// Package cli provides the command-line interface for personagraph.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/personagraph/internal/config"
	"github.com/raphaelgruber/personagraph/internal/llm"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configFile string

	// Global config and logger, populated by PersistentPreRunE.
	cfg       config.Config
	logger    *slog.Logger
	logCloser func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "personagraph",
	Short: "Reddit user persona and knowledge-graph builder",
	Long: `Personagraph scrapes a Reddit user's public posts and comments,
synthesizes a narrative persona with a generative model, and can build a
per-user knowledge graph in Neo4j for question answering.

All credentials are optional with degradation: without Reddit API
credentials the anonymous web fallback is used, and without a generative
backend key a basic rule-based persona is produced.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, logCloser = config.SetupLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			if err := logCloser(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// newModel builds the generative backend, or returns nil when it is not
// configured. Callers degrade accordingly.
func newModel(ctx context.Context) *llm.Model {
	if !cfg.HasLLM() {
		logger.Info("generative backend not configured", "provider", cfg.LLMProvider)
		return nil
	}
	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		logger.Warn("failed to initialize generative backend", "error", err)
		return nil
	}
	return model
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "personagraph.yaml", "config file path")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(askCmd)
}
