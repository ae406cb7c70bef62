// Package extract turns a persona narrative into a typed entity/
// relationship graph by prompting the generative backend for strict JSON.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
)

// ErrExtractionFailed indicates the model response could not be parsed
// into a knowledge graph. No partial graph is ever returned.
var ErrExtractionFailed = errors.New("entity extraction failed")

// TextGenerator is the slice of the LLM wrapper this package needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor prompts the backend for a knowledge graph.
type Extractor struct {
	model  TextGenerator
	logger *slog.Logger

	// Progress receives stage events. Optional.
	Progress *progress.Reporter
}

// New creates an extractor. The model is required: without a generative
// backend there is no extraction path at all.
func New(model TextGenerator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{model: model, logger: logger}
}

// Extract prompts the backend and parses its response into a knowledge
// graph. Relationship referential integrity is NOT checked here: malformed
// endpoint references are an ingestion-time data-quality concern, while a
// response that fails to parse is an extraction failure. The two failure
// classes stay separate on purpose.
func (e *Extractor) Extract(ctx context.Context, narrative *models.PersonaNarrative, username string) (*models.KnowledgeGraph, error) {
	e.Progress.Publish(progress.StageExtraction, "extracting entities and relationships", 0)

	prompt := buildExtractionPrompt(narrative.Text, username)
	e.logger.Debug("calling backend for entity extraction", "username", username, "prompt_len", len(prompt))

	response, err := e.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	graph, err := parseGraphResponse(response)
	if err != nil {
		e.logger.Error("unparseable extraction response", "username", username, "error", err)
		return nil, err
	}

	e.logger.Info("extraction complete", "username", username,
		"entities", len(graph.Entities), "relationships", len(graph.Relationships))
	e.Progress.Publish(progress.StageExtraction, fmt.Sprintf("extracted %d entities, %d relationships", len(graph.Entities), len(graph.Relationships)), len(graph.Entities))
	return graph, nil
}

// parseGraphResponse strips any code-fence wrapping and parses the JSON.
// A parse failure or a missing top-level key is a hard failure; partial
// graphs are never accepted.
func parseGraphResponse(response string) (*models.KnowledgeGraph, error) {
	text := stripCodeFence(response)

	// Pointer slices distinguish "key absent" from "empty list".
	var raw struct {
		Entities      *[]models.Entity       `json:"entities"`
		Relationships *[]models.Relationship `json:"relationships"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse JSON: %v", ErrExtractionFailed, err)
	}
	if raw.Entities == nil || raw.Relationships == nil {
		return nil, fmt.Errorf("%w: response missing entities or relationships key", ErrExtractionFailed)
	}

	return &models.KnowledgeGraph{
		Entities:      *raw.Entities,
		Relationships: *raw.Relationships,
	}, nil
}

// stripCodeFence removes an optional ```json ... ``` (or bare ```) wrapper
// around the model's response.
func stripCodeFence(s string) string {
	text := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
	default:
		return text
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// buildExtractionPrompt creates the second, distinct prompt whose output
// must be strict JSON in the knowledge-graph schema.
func buildExtractionPrompt(personaText, username string) string {
	return fmt.Sprintf(`You are an expert knowledge graph builder. Extract entities and relationships from this Reddit user persona to create a knowledge graph.

PERSONA DATA:
%[2]s

IMPORTANT INSTRUCTIONS:
1. Create unique IDs for each entity (e.g., "user_%[1]s", "interest_programming", "trait_analytical")
2. Ensure every relationship references valid entity IDs from the entities list
3. Include confidence scores (0.0-1.0) for relationships
4. Focus on extracting concrete, factual information

ENTITY TYPES:
- User: The Reddit user themselves
- Interest: Hobbies, topics, activities they care about
- Personality_Trait: Character traits and behavioral patterns
- Subreddit: Reddit communities they're active in
- Technology: Programming languages, tools, frameworks
- Location: Geographic locations mentioned
- Skill: Professional or personal competencies

RELATIONSHIP TYPES:
- HAS_INTEREST: User -> Interest
- HAS_TRAIT: User -> Personality_Trait
- ACTIVE_IN: User -> Subreddit
- SKILLED_IN: User -> Technology/Skill
- LIVES_IN: User -> Location
- RELATED_TO: Interest -> Interest
- REQUIRES: Skill -> Technology

Return ONLY valid JSON in this exact format:
{
  "entities": [
    {
      "id": "user_%[1]s",
      "type": "User",
      "properties": {
        "name": "%[1]s",
        "description": "brief_description"
      }
    }
  ],
  "relationships": [
    {
      "from": "user_%[1]s",
      "to": "interest_example",
      "type": "HAS_INTEREST",
      "properties": {
        "strength": "high"
      },
      "confidence": 0.9
    }
  ]
}

CRITICAL: Every entity must have a unique "id" field, and every relationship must reference valid entity IDs.`,
		username, personaText)
}
