package models

// Entity types produced by the extraction prompt. The extractor asks the
// model to stick to this set but stray values are stored as-is, since the
// graph store uses the type only as a node label.
const (
	EntityUser      = "User"
	EntityInterest  = "Interest"
	EntityTrait     = "Personality_Trait"
	EntitySubreddit = "Subreddit"
	EntityTech      = "Technology"
	EntityLocation  = "Location"
	EntitySkill     = "Skill"
)

// Relationship types produced by the extraction prompt.
const (
	RelHasInterest = "HAS_INTEREST"
	RelHasTrait    = "HAS_TRAIT"
	RelActiveIn    = "ACTIVE_IN"
	RelSkilledIn   = "SKILLED_IN"
	RelLivesIn     = "LIVES_IN"
	RelRelatedTo   = "RELATED_TO"
	RelRequires    = "REQUIRES"
)

// Entity is a typed node extracted from a persona narrative.
// IDs are unique within one extraction batch (e.g. "user_kojied",
// "interest_gaming").
type Entity struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a typed, confidence-scored edge between two entities of
// the same batch. Referential integrity against the batch's entity IDs is
// enforced at ingestion time, not here.
type Relationship struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Confidence float64        `json:"confidence,omitempty"`
}

// KnowledgeGraph is one subject's extracted entity/relationship batch.
// A rebuild always replaces the previous graph, never merges into it.
type KnowledgeGraph struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}
