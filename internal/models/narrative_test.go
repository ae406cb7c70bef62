package models

import (
	"strings"
	"testing"
)

func TestParseSections(t *testing.T) {
	text := strings.Join([]string{
		"# User Persona: kojied",
		"",
		SectionUserProfile,
		"- **Name/Username**: kojied",
		"- **Archetype**: The Explorer",
		"",
		SectionInterests,
		"### Primary",
		"- Gaming",
		"### Secondary",
		"- Cooking",
		"",
		SectionSummary,
		"A curious person.",
		"",
		"EVIDENCE SOURCES:",
		"Comment 1: \"hello\" (r/test)",
	}, "\n")

	sections := ParseSections(text)

	profile, ok := sections[SectionUserProfile]
	if !ok {
		t.Fatalf("missing section %q, got keys %v", SectionUserProfile, keys(sections))
	}
	if !strings.Contains(profile, "The Explorer") {
		t.Errorf("profile body = %q, want it to contain archetype", profile)
	}

	interests := sections[SectionInterests]
	if !strings.Contains(interests, "### Primary") || !strings.Contains(interests, "Cooking") {
		t.Errorf("sub-headings should stay inside the parent body, got %q", interests)
	}

	evidence, ok := sections["EVIDENCE SOURCES"]
	if !ok {
		t.Fatal("missing EVIDENCE SOURCES section")
	}
	if !strings.Contains(evidence, "r/test") {
		t.Errorf("evidence body = %q", evidence)
	}

	if got := sections[SectionSummary]; got != "A curious person." {
		t.Errorf("summary = %q, want trimmed single line", got)
	}
}

func TestParseSectionsEmpty(t *testing.T) {
	if got := ParseSections(""); len(got) != 0 {
		t.Errorf("expected no sections for empty text, got %v", got)
	}
	// Preamble before the first heading is dropped.
	if got := ParseSections("just prose\nwith no headings"); len(got) != 0 {
		t.Errorf("expected no sections for heading-less text, got %v", got)
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
