package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/raphaelgruber/personagraph/internal/models"
)

// IngestionReport summarizes one replace operation. Verified counts come
// from post-write queries against the store, which is authoritative.
type IngestionReport struct {
	NodesCreated  int
	EdgesCreated  int
	EdgesRejected int
	NodesVerified int64
	EdgesVerified int64
}

// ReplaceSubjectGraph atomically swaps the subject's graph: all previously
// stored nodes and edges tagged with the username are deleted and the new
// batch inserted within one write transaction, so a failure partway never
// leaves a mixed old/new graph.
//
// Relationships whose endpoints do not resolve by (id, username) are
// skipped and counted in EdgesRejected, never raised: malformed model
// output is expected, not exceptional.
func (s *Store) ReplaceSubjectGraph(ctx context.Context, graph *models.KnowledgeGraph, username string) (*IngestionReport, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	report := &IngestionReport{}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Replace, not merge: drop everything for this subject first.
		if _, err := tx.Run(ctx,
			"MATCH (n {username: $username}) DETACH DELETE n",
			map[string]any{"username": username}); err != nil {
			return nil, fmt.Errorf("clear existing graph: %w", err)
		}

		for _, entity := range graph.Entities {
			props := flattenProperties(entity.Properties)
			props["id"] = entity.ID
			props["username"] = username

			label := safeIdent(entity.Type, "Entity")
			query := fmt.Sprintf("CREATE (n:%s) SET n = $properties", label)
			if _, err := tx.Run(ctx, query, map[string]any{"properties": props}); err != nil {
				return nil, fmt.Errorf("create entity %s: %w", entity.ID, err)
			}
			report.NodesCreated++
		}

		for _, rel := range graph.Relationships {
			props := flattenProperties(rel.Properties)
			if props == nil {
				props = map[string]any{}
			}
			props["confidence"] = rel.Confidence

			relType := safeIdent(rel.Type, "RELATED_TO")
			query := fmt.Sprintf(`
				MATCH (a {id: $from_id, username: $username})
				MATCH (b {id: $to_id, username: $username})
				CREATE (a)-[r:%s]->(b)
				SET r = $rel_props
				RETURN r`, relType)

			res, err := tx.Run(ctx, query, map[string]any{
				"from_id":   rel.From,
				"to_id":     rel.To,
				"username":  username,
				"rel_props": props,
			})
			if err != nil {
				return nil, fmt.Errorf("create relationship %s->%s: %w", rel.From, rel.To, err)
			}

			if res.Next(ctx) {
				report.EdgesCreated++
			} else {
				// Endpoint missing from the batch: data-quality
				// filtering, not a failure.
				report.EdgesRejected++
				s.logger.Warn("rejected relationship with unknown endpoint",
					"username", username, "from", rel.From, "to", rel.To, "type", rel.Type)
			}
		}

		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace subject graph: %w", err)
	}

	// Post-write verification. A mismatch is logged, not fatal: the
	// store's own counts win.
	report.NodesVerified, err = s.countNodes(ctx, username)
	if err != nil {
		return report, fmt.Errorf("verify node count: %w", err)
	}
	report.EdgesVerified, err = s.countEdges(ctx, username)
	if err != nil {
		return report, fmt.Errorf("verify edge count: %w", err)
	}

	if report.NodesVerified != int64(report.NodesCreated) || report.EdgesVerified != int64(report.EdgesCreated) {
		s.logger.Warn("stored counts differ from created counts",
			"username", username,
			"nodes_created", report.NodesCreated, "nodes_verified", report.NodesVerified,
			"edges_created", report.EdgesCreated, "edges_verified", report.EdgesVerified)
	}

	s.logger.Info("subject graph replaced", "username", username,
		"nodes", report.NodesCreated, "edges", report.EdgesCreated, "rejected", report.EdgesRejected)
	return report, nil
}
