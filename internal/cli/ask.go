package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/personagraph/internal/graphstore"
	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/spf13/cobra"
)

var askSuggest bool

var askCmd = &cobra.Command{
	Use:   "ask <username-or-url> [question]",
	Short: "Ask a question about a user's knowledge graph",
	Long: `Answer a question using only the user's knowledge graph in Neo4j.

The answer is grounded in the stored entities and relationships. When the
graph holds no relevant information, the command says so rather than
guessing.

Examples:
  personagraph ask kojied "What are this user's main interests?"
  personagraph ask kojied --suggest`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSuggest, "suggest", false, "print example questions instead of answering")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	username := models.NormalizeUsername(args[0])

	if askSuggest {
		fmt.Printf("Example questions for u/%s:\n", username)
		for _, q := range graphstore.SuggestedQuestions(username) {
			fmt.Printf("  - %s\n", q)
		}
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("a question is required unless --suggest is set")
	}
	question := args[1]

	store, err := graphstore.New(ctx, graphstore.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to graph store: %w", err)
	}
	defer store.Close(ctx)

	var backend graphstore.TextGenerator
	if model := newModel(ctx); model != nil {
		backend = model
	}
	answerer := graphstore.NewAnswerer(store, backend, logger)
	answer, err := answerer.Answer(ctx, question, username)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
