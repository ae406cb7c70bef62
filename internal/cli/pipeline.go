package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/personagraph/internal/extract"
	"github.com/raphaelgruber/personagraph/internal/graphstore"
	"github.com/raphaelgruber/personagraph/internal/llm"
	"github.com/raphaelgruber/personagraph/internal/metrics"
	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/persona"
	"github.com/raphaelgruber/personagraph/internal/progress"
	"github.com/raphaelgruber/personagraph/internal/reddit"
	"github.com/raphaelgruber/personagraph/internal/storage"
)

// pipeline wires the acquisition, persona and graph stages for one command
// invocation. The graph store connects lazily: fetch-only runs never touch
// Neo4j.
type pipeline struct {
	orchestrator *reddit.Orchestrator
	generator    *persona.Generator
	model        *llm.Model
	reporter     *progress.Reporter
	stats        *metrics.Collector
}

func newPipeline(ctx context.Context, reporter *progress.Reporter) *pipeline {
	var api reddit.Fetcher
	if cfg.HasRedditCredentials() {
		apiClient := reddit.NewAPIClient(ctx, reddit.APIConfig{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			UserAgent:    cfg.RedditUserAgent,
		}, logger)
		apiClient.Progress = reporter
		api = apiClient
	}

	web := reddit.NewWebClient(logger)
	web.Progress = reporter

	model := newModel(ctx)
	generator := persona.NewGenerator(textGenerator(model), logger)
	generator.Progress = reporter

	return &pipeline{
		orchestrator: reddit.NewOrchestrator(api, web, logger, reporter),
		generator:    generator,
		model:        model,
		reporter:     reporter,
		stats:        metrics.NewCollector(),
	}
}

// fetch runs acquisition and records its wall time.
func (p *pipeline) fetch(ctx context.Context, user string, limit int) (*models.AcquisitionResult, error) {
	var result *models.AcquisitionResult
	err := p.stats.Time(metrics.OpFetch, func() error {
		var err error
		result, err = p.orchestrator.Fetch(ctx, user, limit)
		return err
	})
	return result, err
}

// generate runs persona generation and records its wall time.
func (p *pipeline) generate(ctx context.Context, result *models.AcquisitionResult) *models.PersonaNarrative {
	var narrative *models.PersonaNarrative
	p.stats.Time(metrics.OpPersona, func() error {
		narrative = p.generator.Generate(ctx, result)
		return nil
	})
	return narrative
}

// textGenerator converts a possibly-nil *llm.Model into a possibly-nil
// interface without the typed-nil trap.
func textGenerator(model *llm.Model) persona.TextGenerator {
	if model == nil {
		return nil
	}
	return model
}

func (p *pipeline) saveRaw(result *models.AcquisitionResult, outputDir string) (string, error) {
	p.reporter.Publish(progress.StagePersist, "saving raw data", 0)
	path, err := storage.SaveRaw(result, outputDir)
	if err != nil {
		return "", fmt.Errorf("save raw data: %w", err)
	}
	return path, nil
}

func (p *pipeline) saveNarrative(narrative *models.PersonaNarrative, outputDir string) (string, error) {
	p.reporter.Publish(progress.StagePersist, "saving persona", 0)
	path, err := storage.SaveNarrative(narrative.Text, narrative.Username, outputDir)
	if err != nil {
		return "", fmt.Errorf("save persona: %w", err)
	}
	return path, nil
}

// buildGraph extracts the knowledge graph from the narrative and replaces
// the subject's graph in the store.
func (p *pipeline) buildGraph(ctx context.Context, narrative *models.PersonaNarrative, username string) (*graphstore.IngestionReport, error) {
	if p.model == nil {
		return nil, fmt.Errorf("graph extraction requires a generative backend; configure an API key")
	}

	extractor := extract.New(p.model, logger)
	extractor.Progress = p.reporter
	var graph *models.KnowledgeGraph
	err := p.stats.Time(metrics.OpExtraction, func() error {
		var err error
		graph, err = extractor.Extract(ctx, narrative, username)
		return err
	})
	if err != nil {
		return nil, err
	}

	store, err := graphstore.New(ctx, graphstore.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to graph store: %w", err)
	}
	defer store.Close(ctx)

	p.reporter.Publish(progress.StageIngestion, "replacing subject graph", 0)
	var report *graphstore.IngestionReport
	err = p.stats.Time(metrics.OpIngestion, func() error {
		var err error
		report, err = store.ReplaceSubjectGraph(ctx, graph, username)
		return err
	})
	return report, err
}
