package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// contextLineCap bounds the graph context forwarded to the backend.
const contextLineCap = 50

// SubjectContext retrieves the subject's nodes and their outgoing edges and
// formats them as context lines, capped at contextLineCap.
func (s *Store) SubjectContext(ctx context.Context, username string) ([]string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (n {username: $username})
			OPTIONAL MATCH (n)-[r]->(m {username: $username})
			RETURN n, r, m`,
			map[string]any{"username": username})
		if err != nil {
			return nil, err
		}

		var lines []string
		for res.Next(ctx) && len(lines) < contextLineCap {
			record := res.Record()

			nodeValue, _ := record.Get("n")
			node, ok := nodeValue.(neo4j.Node)
			if !ok {
				continue
			}
			lines = append(lines, formatNode(node))

			relValue, _ := record.Get("r")
			targetValue, _ := record.Get("m")
			rel, relOK := relValue.(neo4j.Relationship)
			target, targetOK := targetValue.(neo4j.Node)
			if relOK && targetOK && len(lines) < contextLineCap {
				lines = append(lines, fmt.Sprintf("Relationship: %s -> %s -> %s",
					displayName(node), rel.Type, displayName(target)))
			}
		}
		return lines, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("subject context: %w", err)
	}

	return result.([]string), nil
}

func formatNode(node neo4j.Node) string {
	label := "Entity"
	if len(node.Labels) > 0 {
		label = node.Labels[0]
	}
	return fmt.Sprintf("Entity: %s - %v", label, node.Props)
}

func displayName(node neo4j.Node) string {
	if name, ok := node.Props["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := node.Props["id"].(string); ok && id != "" {
		return id
	}
	return "Unknown"
}

// TextGenerator is the slice of the LLM wrapper the query side needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Answerer answers questions about a subject from their stored graph.
type Answerer struct {
	store  *Store
	model  TextGenerator
	logger *slog.Logger
}

// NewAnswerer creates the query-side helper. model may be nil; Answer then
// fails closed.
func NewAnswerer(store *Store, model TextGenerator, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{store: store, model: model, logger: logger}
}

// Answer retrieves the subject's graph context and forwards it with the
// question to the backend. It fails closed: a missing graph or an
// unavailable backend yields an explanatory message, not an error.
func (a *Answerer) Answer(ctx context.Context, question, username string) (string, error) {
	if a.model == nil {
		return "AI model not available. Configure a generative backend API key to ask questions.", nil
	}

	exists, err := a.store.HasSubjectGraph(ctx, username)
	if err != nil {
		return "", fmt.Errorf("check graph: %w", err)
	}
	if !exists {
		return fmt.Sprintf("No knowledge graph found for u/%s. Build the graph first.", username), nil
	}

	lines, err := a.store.SubjectContext(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get context: %w", err)
	}
	a.logger.Debug("retrieved graph context", "username", username, "lines", len(lines))

	prompt := buildAnswerPrompt(question, strings.Join(lines, "\n"))
	answer, err := a.model.Generate(ctx, prompt)
	if err != nil {
		a.logger.Warn("Q&A generation failed", "username", username, "error", err)
		return "The AI backend could not answer right now. Try again later.", nil
	}
	return answer, nil
}

// SuggestedQuestions returns starter questions for a subject.
func SuggestedQuestions(username string) []string {
	return []string{
		fmt.Sprintf("What are %s's main interests?", username),
		fmt.Sprintf("What personality traits does %s have?", username),
		fmt.Sprintf("Which subreddits is %s most active in?", username),
		fmt.Sprintf("What technologies does %s know about?", username),
		fmt.Sprintf("What can you tell me about %s's communication style?", username),
		fmt.Sprintf("How would you describe %s's online persona?", username),
	}
}

func buildAnswerPrompt(question, graphContext string) string {
	return fmt.Sprintf(`You are a helpful assistant that can answer questions about a Reddit user's persona based on their knowledge graph.

KNOWLEDGE GRAPH CONTEXT:
%s

USER QUESTION: %s

Instructions:
1. Use the knowledge graph data to provide accurate, specific answers
2. Reference specific entities and relationships when relevant
3. If the information isn't in the graph, say so clearly
4. Provide insights based on the user's interests, traits, and activity patterns
5. Be conversational and helpful

Answer the question based on the knowledge graph:`, graphContext, question)
}
