package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

const validGraphJSON = `{
  "entities": [
    {"id": "user_kojied", "type": "User", "properties": {"name": "kojied"}},
    {"id": "interest_gaming", "type": "Interest", "properties": {"name": "Gaming"}}
  ],
  "relationships": [
    {"from": "user_kojied", "to": "interest_gaming", "type": "HAS_INTEREST", "properties": {"strength": "high"}, "confidence": 0.9}
  ]
}`

func testNarrative() *models.PersonaNarrative {
	return &models.PersonaNarrative{
		Username:    "kojied",
		Text:        "# Reddit User Persona: u/kojied\n\n## 🎮 Interests & Hobbies\n- Gaming",
		Method:      models.NarrativeLLM,
		GeneratedAt: time.Now(),
	}
}

func TestExtract(t *testing.T) {
	e := New(&fakeModel{response: validGraphJSON}, nil)
	graph, err := e.Extract(context.Background(), testNarrative(), "kojied")
	require.NoError(t, err)

	require.Len(t, graph.Entities, 2)
	assert.Equal(t, "user_kojied", graph.Entities[0].ID)
	assert.Equal(t, models.EntityUser, graph.Entities[0].Type)

	require.Len(t, graph.Relationships, 1)
	rel := graph.Relationships[0]
	assert.Equal(t, models.RelHasInterest, rel.Type)
	assert.InDelta(t, 0.9, rel.Confidence, 0.001)
}

func TestExtractFencedResponse(t *testing.T) {
	e := New(&fakeModel{response: "```json\n" + validGraphJSON + "\n```"}, nil)
	graph, err := e.Extract(context.Background(), testNarrative(), "kojied")
	require.NoError(t, err)
	assert.Len(t, graph.Entities, 2)
}

func TestExtractDanglingEdgeIsNotAnError(t *testing.T) {
	// Referential integrity is an ingestion-time concern; the extractor
	// passes dangling references through untouched.
	response := `{"entities": [{"id": "user_kojied", "type": "User", "properties": {}}],
		"relationships": [{"from": "user_kojied", "to": "ghost_entity", "type": "HAS_INTEREST", "properties": {}}]}`
	e := New(&fakeModel{response: response}, nil)
	graph, err := e.Extract(context.Background(), testNarrative(), "kojied")
	require.NoError(t, err)
	assert.Equal(t, "ghost_entity", graph.Relationships[0].To)
}

func TestExtractBackendError(t *testing.T) {
	e := New(&fakeModel{err: errors.New("quota exceeded")}, nil)
	_, err := e.Extract(context.Background(), testNarrative(), "kojied")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestExtractUnparseableResponse(t *testing.T) {
	e := New(&fakeModel{response: "Sorry, I can't help with that."}, nil)
	_, err := e.Extract(context.Background(), testNarrative(), "kojied")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
}

func TestParseGraphResponseMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing relationships", `{"entities": []}`},
		{"missing entities", `{"relationships": []}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseGraphResponse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrExtractionFailed))
		})
	}
}

func TestParseGraphResponseEmptyLists(t *testing.T) {
	graph, err := parseGraphResponse(`{"entities": [], "relationships": []}`)
	require.NoError(t, err)
	assert.Empty(t, graph.Entities)
	assert.Empty(t, graph.Relationships)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}
