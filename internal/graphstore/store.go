// Package graphstore persists per-subject knowledge graphs in Neo4j.
// Every node and edge carries a username property; that tag is the only
// isolation between subjects sharing the store, so all operations scope
// their Cypher by it.
package graphstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrNoGraph indicates no graph has been built for the subject.
var ErrNoGraph = errors.New("no graph for subject")

// Config holds Neo4j connection configuration.
type Config struct {
	URI      string
	Username string
	Password string
}

// Store wraps Neo4j driver operations for subject-tagged graphs.
type Store struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// New creates a store and verifies connectivity.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	return &Store{driver: driver, logger: logger}, nil
}

// Close closes the Neo4j connection.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// PurgeSubjectGraph deletes every node tagged with the username and, via
// DETACH, every edge touching them. Idempotent: purging an absent subject
// is a no-op.
func (s *Store) PurgeSubjectGraph(ctx context.Context, username string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (n {username: $username}) DETACH DELETE n",
			map[string]any{"username": username})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("purge subject graph: %w", err)
	}

	s.logger.Info("purged subject graph", "username", username)
	return nil
}

// HasSubjectGraph checks the store itself for subject-tagged nodes. The
// store is the single source of truth; no in-process graph state is kept.
func (s *Store) HasSubjectGraph(ctx context.Context, username string) (bool, error) {
	count, err := s.countNodes(ctx, username)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) countNodes(ctx context.Context, username string) (int64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (n {username: $username}) RETURN count(n) AS node_count",
			map[string]any{"username": username})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		count, _ := record.Get("node_count")
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return result.(int64), nil
}

func (s *Store) countEdges(ctx context.Context, username string) (int64, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (a {username: $username})-[r]->(b {username: $username}) RETURN count(r) AS rel_count",
			map[string]any{"username": username})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		count, _ := record.Get("rel_count")
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return result.(int64), nil
}

// identRe matches safe Cypher identifiers. Labels and relationship types
// cannot be query parameters, so anything else is replaced before
// interpolation.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func safeIdent(s, fallback string) string {
	if identRe.MatchString(s) {
		return s
	}
	return fallback
}

// flattenProperties keeps scalar values as-is and JSON-encodes anything
// nested, since Neo4j properties cannot hold maps.
func flattenProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch v.(type) {
		case string, bool, int, int64, float64, nil:
			out[k] = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				out[k] = fmt.Sprintf("%v", v)
				continue
			}
			out[k] = string(encoded)
		}
	}
	return out
}
