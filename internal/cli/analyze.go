package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/raphaelgruber/personagraph/internal/extract"
	"github.com/raphaelgruber/personagraph/internal/graphstore"
	"github.com/raphaelgruber/personagraph/internal/metrics"
	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
	"github.com/raphaelgruber/personagraph/internal/reddit"
	"github.com/spf13/cobra"
)

var (
	analyzeLimit       int
	analyzeOutput      string
	analyzeSkipPersona bool
	analyzeBuildGraph  bool
	analyzeTimings     bool
)

// Fetch limit bounds. The default matches the original service.
const (
	defaultFetchLimit = 100
	maxFetchLimit     = 500
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <username-or-url>",
	Short: "Fetch a user's activity and generate their persona",
	Long: `Fetch a Reddit user's public posts and comments, save the raw data,
and generate a persona narrative.

The user may be given as a bare username or a profile URL. The Reddit API
is used when credentials are configured and reachable; otherwise the
anonymous web endpoints are scraped with rate-limit-friendly pacing.

Examples:
  personagraph analyze kojied
  personagraph analyze "https://www.reddit.com/user/kojied/"
  personagraph analyze spez --limit 50 --skip-persona
  personagraph analyze kojied --graph`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "n", defaultFetchLimit, "max posts/comments to fetch per category")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output directory (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeSkipPersona, "skip-persona", false, "only fetch and save raw data")
	analyzeCmd.Flags().BoolVar(&analyzeBuildGraph, "graph", false, "also build the knowledge graph in Neo4j")
	analyzeCmd.Flags().BoolVar(&analyzeTimings, "timings", false, "print per-stage timing summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if analyzeLimit < 1 || analyzeLimit > maxFetchLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxFetchLimit)
	}
	outputDir := analyzeOutput
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	runID := uuid.New().String()[:8]
	reporter := progress.New(runID)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range reporter.Events() {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", ev.Stage, ev.Message)
		}
	}()
	defer func() {
		reporter.Close()
		wg.Wait()
	}()

	pipe := newPipeline(ctx, reporter)
	if analyzeTimings {
		defer printTimings(pipe)
	}

	result, err := pipe.fetch(ctx, args[0], analyzeLimit)
	if err != nil {
		if errors.Is(err, reddit.ErrNoData) {
			return fmt.Errorf("no data found for this user (unknown, private, or inactive): %w", err)
		}
		return fmt.Errorf("fetch failed: %w", err)
	}

	rawPath, err := pipe.saveRaw(result, outputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Raw data saved to %s (%d posts, %d comments, via %s)\n",
		rawPath, len(result.Submissions), len(result.Comments), result.Method)

	if analyzeSkipPersona {
		return nil
	}

	narrative := pipe.generate(ctx, result)
	narrativePath, err := pipe.saveNarrative(narrative, outputDir)
	if err != nil {
		return err
	}
	if narrative.Method == models.NarrativeFallback {
		fmt.Printf("Persona saved to %s (basic analysis; configure a generative backend for deeper insights)\n", narrativePath)
	} else {
		fmt.Printf("Persona saved to %s\n", narrativePath)
	}

	if analyzeBuildGraph {
		report, err := pipe.buildGraph(ctx, narrative, result.Username)
		if err != nil {
			if errors.Is(err, extract.ErrExtractionFailed) {
				return fmt.Errorf("knowledge-graph extraction failed (persona was still saved): %w", err)
			}
			return fmt.Errorf("graph build failed: %w", err)
		}
		printReport(report, result.Username)
	}

	return nil
}

// printTimings renders the per-stage timing summary on stderr.
func printTimings(pipe *pipeline) {
	snap := pipe.stats.Snapshot()
	fmt.Fprintf(os.Stderr, "Timings (%.1fs total):\n", snap.ElapsedSeconds)
	stages := []struct {
		name string
		s    *metrics.StageSnapshot
	}{
		{"fetch", snap.Fetch},
		{"persona", snap.Persona},
		{"extraction", snap.Extraction},
		{"ingestion", snap.Ingestion},
	}
	for _, st := range stages {
		if st.s == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "  %-10s %6dms\n", st.name, st.s.TotalTimeMs)
	}
}

// printReport renders an ingestion report for humans.
func printReport(report *graphstore.IngestionReport, username string) {
	fmt.Printf("Knowledge graph for u/%s: %d nodes, %d edges created", username, report.NodesCreated, report.EdgesCreated)
	if report.EdgesRejected > 0 {
		fmt.Printf(", %d edges rejected (unknown endpoints)", report.EdgesRejected)
	}
	fmt.Printf(" (store reports %d nodes, %d edges)\n", report.NodesVerified, report.EdgesVerified)
}
