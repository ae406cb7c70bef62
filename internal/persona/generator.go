// Package persona turns an acquisition result into a narrative persona
// document, via the generative backend when available and a deterministic
// rule-based generator otherwise.
package persona

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
)

// TextGenerator is the slice of the LLM wrapper this package needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator produces persona narratives. A nil model is valid and routes
// every request through the fallback generator.
type Generator struct {
	model  TextGenerator
	logger *slog.Logger

	// Progress receives stage events. Optional.
	Progress *progress.Reporter
}

// NewGenerator creates a narrative generator. model may be nil when no
// generative backend is configured.
func NewGenerator(model TextGenerator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{model: model, logger: logger}
}

// Generate builds a persona narrative for the result. It never fails
// outward: backend absence, backend errors and empty responses all degrade
// to the deterministic fallback. Persisting the narrative is the caller's
// job.
func (g *Generator) Generate(ctx context.Context, result *models.AcquisitionResult) *models.PersonaNarrative {
	g.Progress.Publish(progress.StageNarrative, "generating persona", 0)

	if g.model == nil {
		g.logger.Info("no generative backend configured, using fallback persona", "username", result.Username)
		return g.fallbackNarrative(result)
	}

	prompt := buildPersonaPrompt(FormatForAnalysis(result), result.Username)

	text, err := g.model.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("persona generation failed, using fallback", "username", result.Username, "error", err)
		return g.fallbackNarrative(result)
	}
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("empty response from backend, using fallback", "username", result.Username)
		return g.fallbackNarrative(result)
	}

	g.Progress.Publish(progress.StageNarrative, "persona generation complete", 0)
	return &models.PersonaNarrative{
		Username:    result.Username,
		Text:        text,
		Method:      models.NarrativeLLM,
		GeneratedAt: time.Now(),
	}
}

func (g *Generator) fallbackNarrative(result *models.AcquisitionResult) *models.PersonaNarrative {
	g.Progress.Publish(progress.StageNarrative, "generating basic persona without AI", 0)
	return &models.PersonaNarrative{
		Username:    result.Username,
		Text:        generateFallback(result),
		Method:      models.NarrativeFallback,
		GeneratedAt: time.Now(),
	}
}
