package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/raphaelgruber/personagraph/internal/extract"
	"github.com/raphaelgruber/personagraph/internal/graphstore"
	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/persona"
	"github.com/raphaelgruber/personagraph/internal/storage"
	"github.com/spf13/cobra"
)

var graphOutput string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage a user's knowledge graph in Neo4j",
}

var graphBuildCmd = &cobra.Command{
	Use:   "build <username-or-url>",
	Short: "Build the knowledge graph from a saved persona",
	Long: `Extract entities and relationships from a previously saved persona and
replace the user's knowledge graph in Neo4j.

When no saved persona exists but raw data does, a persona is regenerated
from the raw data first. The previous graph for the user is always deleted
before the new one is inserted.

Examples:
  personagraph graph build kojied
  personagraph graph build kojied --output ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runGraphBuild,
}

var graphPurgeCmd = &cobra.Command{
	Use:   "purge <username-or-url>",
	Short: "Delete all graph data for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphPurge,
}

func init() {
	graphBuildCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "directory holding saved data (default from config)")
	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphPurgeCmd)
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	username := models.NormalizeUsername(args[0])

	outputDir := graphOutput
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	narrative, err := loadOrRegenerateNarrative(ctx, username, outputDir)
	if err != nil {
		return err
	}

	model := newModel(ctx)
	if model == nil {
		return fmt.Errorf("graph extraction requires a generative backend; configure an API key")
	}

	extractor := extract.New(model, logger)
	graph, err := extractor.Extract(ctx, narrative, username)
	if err != nil {
		if errors.Is(err, extract.ErrExtractionFailed) {
			return fmt.Errorf("extraction produced no usable graph: %w", err)
		}
		return err
	}

	store, err := graphstore.New(ctx, graphstore.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to graph store: %w", err)
	}
	defer store.Close(ctx)

	report, err := store.ReplaceSubjectGraph(ctx, graph, username)
	if err != nil {
		return fmt.Errorf("replace subject graph: %w", err)
	}
	printReport(report, username)
	return nil
}

// loadOrRegenerateNarrative prefers the saved persona file; failing that it
// regenerates one from saved raw data.
func loadOrRegenerateNarrative(ctx context.Context, username, outputDir string) (*models.PersonaNarrative, error) {
	text, err := storage.LoadNarrative(username, outputDir)
	if err == nil {
		logger.Info("loaded saved persona", "username", username)
		return &models.PersonaNarrative{
			Username:    username,
			Text:        text,
			Method:      models.NarrativeLLM,
			GeneratedAt: time.Now(),
		}, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	result, err := storage.LoadRaw(storage.RawPath(username, outputDir))
	if err != nil {
		return nil, fmt.Errorf("no saved persona or raw data for u/%s; run analyze first", username)
	}

	logger.Info("regenerating persona from raw data", "username", username)
	generator := persona.NewGenerator(textGenerator(newModel(ctx)), logger)
	return generator.Generate(ctx, result), nil
}

func runGraphPurge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	username := models.NormalizeUsername(args[0])

	store, err := graphstore.New(ctx, graphstore.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to graph store: %w", err)
	}
	defer store.Close(ctx)

	if err := store.PurgeSubjectGraph(ctx, username); err != nil {
		return err
	}
	fmt.Printf("Graph data for u/%s deleted\n", username)
	return nil
}
