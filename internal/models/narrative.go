package models

import (
	"strings"
	"time"
)

// NarrativeMethod records how a persona narrative was produced.
type NarrativeMethod string

const (
	// NarrativeLLM means the generative backend wrote the narrative.
	NarrativeLLM NarrativeMethod = "llm"
	// NarrativeFallback means the deterministic rule-based generator was used.
	NarrativeFallback NarrativeMethod = "fallback"
)

// PersonaNarrative is the generated persona document for one subject.
// Read-only once saved.
type PersonaNarrative struct {
	Username    string          `json:"username"`
	Text        string          `json:"text"`
	Method      NarrativeMethod `json:"method"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Section headings of the narrative document. These exact strings are a
// contract: the persona prompt mandates them, the fallback generator emits
// them, and every downstream consumer parses by them. Do not change without
// versioning the narrative format.
const (
	SectionUserProfile  = "## 👤 User Profile"
	SectionCoreIdentity = "## 🎯 Core Identity"
	SectionInterests    = "## 🎮 Interests & Hobbies"
	SectionValues       = "## 💭 Values & Beliefs"
	SectionGoals        = "## 🎯 Goals & Motivations"
	SectionFrustrations = "## 😤 Frustrations & Pain Points"
	SectionBehavior     = "## 🔍 Behavioral Patterns"
	SectionActivity     = "## 📊 Activity Summary"
	SectionQuote        = "## 🎭 Persona Quote"
	SectionSummary      = "## 📝 Summary"
)

// SectionHeadings lists the mandated sections in document order.
var SectionHeadings = []string{
	SectionUserProfile,
	SectionCoreIdentity,
	SectionInterests,
	SectionValues,
	SectionGoals,
	SectionFrustrations,
	SectionBehavior,
	SectionActivity,
	SectionQuote,
	SectionSummary,
}

// evidenceMarker starts the evidence-sources block at the end of a
// narrative. Parsed under the "EVIDENCE SOURCES" key.
const evidenceMarker = "EVIDENCE SOURCES:"

// ParseSections splits a narrative into a heading -> body mapping.
// Every "## " line starts a new section keyed by its full heading text;
// sub-headings ("### ") stay inside their parent section's body. This is
// the one parser all consumers share instead of re-matching headings ad hoc.
func ParseSections(text string) map[string]string {
	sections := make(map[string]string)
	var current string
	var body []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "## ") && !strings.HasPrefix(trimmed, "###"):
			flush()
			current = trimmed
		case strings.HasPrefix(trimmed, evidenceMarker):
			flush()
			current = strings.TrimSuffix(evidenceMarker, ":")
		default:
			if current != "" {
				body = append(body, line)
			}
		}
	}
	flush()

	return sections
}
