package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRawRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := &models.AcquisitionResult{
		Username: "kojied",
		Submissions: []models.Post{
			{ID: "p1", Title: "First post", Body: "text", URL: "https://www.reddit.com/r/test/1", Subreddit: "test", Score: 42, CreatedUTC: 1700000000, NumComments: 7},
		},
		Comments: []models.Comment{
			{ID: "c1", Body: "a comment", URL: "https://www.reddit.com/r/test/c1", Subreddit: "test", Score: 3, CreatedUTC: 1700000100, SubmissionTitle: "First post"},
		},
		TotalSubmissions: 1,
		TotalComments:    1,
		Method:           models.MethodWeb,
		ScrapedAt:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	path, err := SaveRaw(original, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kojied_raw_data.json"), path)
	assert.Equal(t, path, RawPath("kojied", dir))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSaveRawCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	_, err := SaveRaw(&models.AcquisitionResult{Username: "kojied"}, dir)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.NoError(t, err)
}

func TestSaveRawOverwrites(t *testing.T) {
	dir := t.TempDir()
	first := &models.AcquisitionResult{Username: "kojied", TotalComments: 1}
	second := &models.AcquisitionResult{Username: "kojied", TotalComments: 2}

	_, err := SaveRaw(first, dir)
	require.NoError(t, err)
	path, err := SaveRaw(second, dir)
	require.NoError(t, err)

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalComments)
}

func TestSaveLoadNarrative(t *testing.T) {
	dir := t.TempDir()
	text := "# User Persona: kojied\n\n## 👤 User Profile\n- **Name/Username**: kojied\n"

	path, err := SaveNarrative(text, "kojied", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kojied_persona.txt"), path)

	loaded, err := LoadNarrative("kojied", dir)
	require.NoError(t, err)
	assert.Equal(t, text, loaded)
}

func TestLoadNarrativeAlternatePatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spez.md"), []byte("persona"), 0644))

	loaded, err := LoadNarrative("spez", dir)
	require.NoError(t, err)
	assert.Equal(t, "persona", loaded)
}

func TestLoadNarrativeMissing(t *testing.T) {
	_, err := LoadNarrative("nobody", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
