package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raphaelgruber/personagraph/internal/models"
)

// interestCategory pairs a display name with the keywords that signal it.
type interestCategory struct {
	name     string
	keywords []string
}

// Fixed interest categories for keyword matching. Order matters for
// deterministic output.
var interestCategories = []interestCategory{
	{"🎮 Gaming", []string{"game", "gaming", "play"}},
	{"💻 Technology", []string{"tech", "programming", "code", "software"}},
	{"🍽️ Food & Dining", []string{"food", "cooking", "restaurant"}},
	{"✈️ Travel", []string{"travel", "trip", "vacation"}},
	{"🎵 Music", []string{"music", "song", "band"}},
	{"🎬 Entertainment", []string{"movie", "film", "show", "tv"}},
}

// Sampling bounds for the keyword scan.
const (
	fallbackSampleComments    = 10
	fallbackSampleSubmissions = 5
)

// subredditCount is a community with its activity count.
type subredditCount struct {
	Name  string
	Count int
}

// topSubreddits tallies communities across submissions and comments and
// returns them by descending count, name ascending on ties so the same
// input always yields the same order.
func topSubreddits(result *models.AcquisitionResult) []subredditCount {
	counts := make(map[string]int)
	for _, sub := range result.Submissions {
		counts[orUnknown(sub.Subreddit)]++
	}
	for _, comment := range result.Comments {
		counts[orUnknown(comment.Subreddit)]++
	}

	out := make([]subredditCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, subredditCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// matchedInterests keyword-matches sampled body text against the fixed
// categories.
func matchedInterests(result *models.AcquisitionResult) []string {
	var texts []string
	for i, comment := range result.Comments {
		if i >= fallbackSampleComments {
			break
		}
		texts = append(texts, comment.Body)
	}
	for i, sub := range result.Submissions {
		if i >= fallbackSampleSubmissions {
			break
		}
		texts = append(texts, sub.Title, sub.Body)
	}
	combined := strings.ToLower(strings.Join(texts, " "))

	var interests []string
	for _, cat := range interestCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(combined, kw) {
				interests = append(interests, cat.name)
				break
			}
		}
	}
	return interests
}

func activityLevel(total int) string {
	switch {
	case total > 50:
		return "High"
	case total > 20:
		return "Moderate"
	default:
		return "Light"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// generateFallback produces a best-effort persona without the generative
// backend: computed statistics and keyword-matched interests rendered under
// the same section schema the LLM path uses, so downstream parsing works
// unchanged. Output is fully deterministic for a given result.
func generateFallback(result *models.AcquisitionResult) string {
	username := result.Username
	totalSubs := len(result.Submissions)
	totalComments := len(result.Comments)
	total := totalSubs + totalComments

	subreddits := topSubreddits(result)
	interests := matchedInterests(result)

	primary := make([]string, 0, 3)
	for i, s := range subreddits {
		if i >= 3 {
			break
		}
		primary = append(primary, "r/"+s.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reddit User Persona: u/%s\n\n", username)

	fmt.Fprintf(&b, "%s\n\n", models.SectionUserProfile)
	fmt.Fprintf(&b, "**Activity Level:** %d posts, %d comments\n", totalSubs, totalComments)
	fmt.Fprintf(&b, "**Community Engagement:** Active in %d different subreddits\n", len(subreddits))
	fmt.Fprintf(&b, "**Primary Communities:** %s\n\n", strings.Join(primary, ", "))

	fmt.Fprintf(&b, "%s\n\n", models.SectionCoreIdentity)
	b.WriteString("### Personality Overview\n")
	b.WriteString("This Reddit user demonstrates active engagement across multiple communities, showing curiosity and willingness to participate in diverse discussions.\n\n")
	b.WriteString("### Communication Style\n")
	b.WriteString("Based on their posting patterns, they appear to be a regular contributor who engages with various topics and communities.\n\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionInterests)
	b.WriteString("### Identified Interests\n")
	if len(interests) > 0 {
		for i, interest := range interests {
			if i >= 4 {
				break
			}
			fmt.Fprintf(&b, "- **%s**: Shows engagement through posts and comments\n", interest)
		}
	} else {
		b.WriteString("- **Community Engagement**: Active participant in Reddit discussions\n")
		b.WriteString("- **Diverse Topics**: Engages with multiple subject areas\n")
	}
	b.WriteString("\n### Top Communities\n")
	for i, s := range subreddits {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. **r/%s**: %d posts/comments\n", i+1, s.Name, s.Count)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionValues)
	b.WriteString("Not inferred: value and belief analysis requires the generative backend.\n\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionGoals)
	b.WriteString("Not inferred: motivation analysis requires the generative backend.\n\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionFrustrations)
	b.WriteString("Not inferred: sentiment analysis requires the generative backend.\n\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionBehavior)
	b.WriteString("### Online Behavior\n")
	fmt.Fprintf(&b, "- **Activity Level**: %s\n", activityLevel(total))
	fmt.Fprintf(&b, "- **Engagement Style**: Contributes across %d communities\n", len(subreddits))
	b.WriteString("- **Content Preference**: See top communities above\n\n")

	fmt.Fprintf(&b, "%s\n\n", models.SectionActivity)
	fmt.Fprintf(&b, "**Most Active In**: %s\n", strings.Join(primary, ", "))
	fmt.Fprintf(&b, "**Total Posts**: %d\n", totalSubs)
	fmt.Fprintf(&b, "**Total Comments**: %d\n", totalComments)
	fmt.Fprintf(&b, "**Total Contributions:** %d posts and comments\n", total)
	fmt.Fprintf(&b, "**Engagement Level:** %s activity level\n\n", activityLevel(total))

	fmt.Fprintf(&b, "%s\n\n", models.SectionQuote)
	fmt.Fprintf(&b, "\"An engaged Reddit user exploring %d different communities.\"\n\n", len(subreddits))

	fmt.Fprintf(&b, "%s\n\n", models.SectionSummary)
	fmt.Fprintf(&b, "u/%s appears to be an engaged Reddit user who actively participates in community discussions across %d different subreddits. Their activity pattern suggests someone who enjoys exploring diverse topics and contributing to conversations.\n\n", username, len(subreddits))

	b.WriteString("This is a basic analysis generated without the generative backend. Configure an API key for a deeper persona.\n\n")
	b.WriteString("---\n\n")
	b.WriteString("EVIDENCE SOURCES:\n")

	evidence := 0
	for _, comment := range result.Comments {
		if evidence >= 3 {
			break
		}
		fmt.Fprintf(&b, "Comment in r/%s - %s\n", orUnknown(comment.Subreddit), comment.URL)
		evidence++
	}
	evidence = 0
	for _, sub := range result.Submissions {
		if evidence >= 3 {
			break
		}
		fmt.Fprintf(&b, "Post in r/%s - %s\n", orUnknown(sub.Subreddit), sub.URL)
		evidence++
	}

	return b.String()
}
