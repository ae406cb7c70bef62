package persona

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/personagraph/internal/models"
)

// Bounds on the prompt payload, chosen to respect backend token limits.
const (
	maxPromptSubmissions = 20
	maxPromptComments    = 30
	maxSubmissionBody    = 500
	maxCommentBody       = 300
)

// FormatForAnalysis renders the acquisition result into the bounded text
// block embedded in the persona prompt: at most 20 submissions with bodies
// truncated to 500 chars and at most 30 comments truncated to 300 chars.
func FormatForAnalysis(result *models.AcquisitionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reddit User Analysis Data for u/%s\n", result.Username)
	fmt.Fprintf(&b, "Scraped on: %s\n", result.ScrapedAt.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "Total Submissions: %d\n", len(result.Submissions))
	fmt.Fprintf(&b, "Total Comments: %d\n\n", len(result.Comments))

	if len(result.Submissions) > 0 {
		b.WriteString("=== SUBMISSIONS (POSTS) ===\n\n")
		for i, sub := range result.Submissions {
			if i >= maxPromptSubmissions {
				break
			}
			fmt.Fprintf(&b, "Submission %d:\n", i+1)
			fmt.Fprintf(&b, "Title: %s\n", sub.Title)
			fmt.Fprintf(&b, "Subreddit: r/%s\n", sub.Subreddit)
			fmt.Fprintf(&b, "Score: %d\n", sub.Score)
			fmt.Fprintf(&b, "URL: %s\n", sub.URL)
			if sub.Body != "" {
				fmt.Fprintf(&b, "Content: %s...\n", truncate(sub.Body, maxSubmissionBody))
			}
			b.WriteString("\n")
		}
	}

	if len(result.Comments) > 0 {
		b.WriteString("=== COMMENTS ===\n\n")
		for i, comment := range result.Comments {
			if i >= maxPromptComments {
				break
			}
			fmt.Fprintf(&b, "Comment %d:\n", i+1)
			fmt.Fprintf(&b, "Subreddit: r/%s\n", comment.Subreddit)
			fmt.Fprintf(&b, "Score: %d\n", comment.Score)
			fmt.Fprintf(&b, "Content: %s...\n", truncate(comment.Body, maxCommentBody))
			fmt.Fprintf(&b, "URL: %s\n", comment.URL)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// buildPersonaPrompt creates the generation prompt. The section headings it
// mandates are the narrative's parsing contract (models.SectionHeadings);
// downstream consumers match these exact strings.
func buildPersonaPrompt(formattedData, username string) string {
	return fmt.Sprintf(`You are an expert user researcher and data analyst. Analyze the following Reddit user data for u/%[1]s and create a comprehensive, user-friendly persona.

INSTRUCTIONS:
1. Analyze the user's posts, comments, and activity patterns
2. Create a persona that feels like a real person with:
   - Basic demographics (age range, location hints, lifestyle)
   - Core interests and hobbies
   - Personality traits and characteristics
   - Communication style and tone
   - Values and beliefs
   - Goals and motivations
   - Frustrations and pain points
   - Behavioral patterns

3. Make it engaging and human-readable, like a character profile
4. For sensitive inferences, use appropriate confidence qualifiers
5. Structure your response EXACTLY as follows:

# Reddit User Persona: u/%[1]s

%[2]s

**Age Range:** [Estimated age range based on references and communication style]
**Location:** [Inferred location based on posts/comments]
**Lifestyle:** [Brief description of their lifestyle]
**Primary Interests:** [Top 3-4 main interests]

%[3]s

### Personality Overview
[2-3 sentences describing their overall personality and approach to life]

### Communication Style
[How they communicate online - tone, style, approach]

%[4]s

### Primary Interests
- **[Interest 1]**: [Description of involvement and expertise level]
- **[Interest 2]**: [Description of involvement and expertise level]
- **[Interest 3]**: [Description of involvement and expertise level]

### Secondary Interests
- **[Interest 4]**: [Brief description]
- **[Interest 5]**: [Brief description]

%[5]s

### Core Values
- **[Value 1]**: [How this shows up in their posts]
- **[Value 2]**: [How this shows up in their posts]
- **[Value 3]**: [How this shows up in their posts]

### Perspectives
[Their general worldview and perspectives on life/society]

%[6]s

### What Drives Them
- [Primary motivation 1]
- [Primary motivation 2]
- [Primary motivation 3]

### What They're Seeking
[What they seem to be looking for in their online interactions]

%[7]s

### Common Frustrations
- [Frustration 1 based on complaints or negative comments]
- [Frustration 2]
- [Frustration 3]

### Challenges They Face
[Challenges they discuss or seem to encounter]

%[8]s

### Online Behavior
- **Activity Level**: [How often they post/comment]
- **Engagement Style**: [How they interact with others]
- **Content Preference**: [What type of content they create/engage with]

### Communication Patterns
- **Helpfulness**: [How helpful they are to others]
- **Expertise Sharing**: [How they share knowledge]
- **Community Involvement**: [How they participate in communities]

%[9]s

**Most Active In**: [Top 3 subreddits]
**Total Posts**: [Number]
**Total Comments**: [Number]
**Account Age Estimate**: [Based on references and posting patterns]

%[10]s
"[A quote that would represent this user's perspective or approach to life, based on their communication style]"

%[11]s
[2-3 sentences summarizing who this person is and what makes them unique]

---

EVIDENCE SOURCES:
[List key sources used for major inferences, formatted as: Topic - URL]

DATA TO ANALYZE:

%[12]s

Remember: Make this feel like a real person, not a dry analysis. Focus on creating an engaging, relatable persona while staying true to the evidence.`,
		username,
		models.SectionUserProfile,
		models.SectionCoreIdentity,
		models.SectionInterests,
		models.SectionValues,
		models.SectionGoals,
		models.SectionFrustrations,
		models.SectionBehavior,
		models.SectionActivity,
		models.SectionQuote,
		models.SectionSummary,
		formattedData,
	)
}
