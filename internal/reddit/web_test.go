package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingPage renders one listing response with n things of the given kind.
// IDs are offset so pages don't collide.
func listingPage(kind string, offset, n int, after string) []byte {
	children := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		data := map[string]any{
			"id":          fmt.Sprintf("%s_%d", kind, offset+i),
			"permalink":   fmt.Sprintf("/r/test/comments/abc/thing_%d/", offset+i),
			"subreddit":   "test",
			"score":       offset + i,
			"created_utc": 1700000000.0 + float64(offset+i),
		}
		if kind == kindSubmission {
			data["title"] = fmt.Sprintf("post %d", offset+i)
			data["selftext"] = "body"
			data["num_comments"] = 3
		} else {
			data["body"] = fmt.Sprintf("comment %d", offset+i)
			data["link_title"] = "parent post"
		}
		children = append(children, map[string]any{"kind": kind, "data": data})
	}
	page := map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": children},
	}
	b, _ := json.Marshal(page)
	return b
}

func newTestWebClient(t *testing.T, handler http.Handler) *WebClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWebClient(nil, WithBaseURL(srv.URL), WithPageDelay(0))
}

func TestWebFetchPaginates(t *testing.T) {
	client := newTestWebClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		switch {
		case strings.Contains(r.URL.Path, "/comments.json"):
			if after == "" {
				w.Write(listingPage(kindComment, 0, 25, "t1_cursor"))
			} else {
				w.Write(listingPage(kindComment, 25, 15, ""))
			}
		case strings.Contains(r.URL.Path, "/submitted.json"):
			w.Write(listingPage(kindSubmission, 0, 10, ""))
		default:
			http.NotFound(w, r)
		}
	}))

	result, err := client.Fetch(context.Background(), "kojied", 100)
	require.NoError(t, err)

	assert.Len(t, result.Comments, 40)
	assert.Len(t, result.Submissions, 10)
	assert.Equal(t, 40, result.TotalComments)
	assert.Equal(t, 10, result.TotalSubmissions)
	assert.Equal(t, models.MethodWeb, result.Method)

	// Normalization happens at the boundary.
	first := result.Comments[0]
	assert.Equal(t, "t1_0", first.ID)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/abc/thing_0/", first.URL)
	assert.Equal(t, "parent post", first.SubmissionTitle)

	post := result.Submissions[0]
	assert.Equal(t, "post 0", post.Title)
	assert.Equal(t, "body", post.Body)
	assert.Equal(t, 3, post.NumComments)
}

func TestWebFetchRespectsLimit(t *testing.T) {
	client := newTestWebClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always hand back a full page with a cursor; the client must
		// stop on its own.
		kind := kindComment
		if strings.Contains(r.URL.Path, "/submitted.json") {
			kind = kindSubmission
		}
		w.Write(listingPage(kind, 0, 25, "t_more"))
	}))

	result, err := client.Fetch(context.Background(), "kojied", 30)
	require.NoError(t, err)
	assert.Len(t, result.Comments, 30)
	assert.Len(t, result.Submissions, 30)
}

func TestWebFetchForbiddenKeepsOtherContentType(t *testing.T) {
	client := newTestWebClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments.json") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write(listingPage(kindSubmission, 0, 5, ""))
	}))

	result, err := client.Fetch(context.Background(), "kojied", 100)
	require.NoError(t, err)
	assert.Empty(t, result.Comments)
	assert.Len(t, result.Submissions, 5)
	assert.True(t, result.Usable())
}

func TestWebFetchEmptyUser(t *testing.T) {
	client := newTestWebClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingPage(kindComment, 0, 0, ""))
	}))

	result, err := client.Fetch(context.Background(), "ghost", 100)
	require.NoError(t, err)
	assert.False(t, result.Usable())
}

func TestWebFetchTransportErrorBothTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewWebClient(nil, WithBaseURL(srv.URL), WithPageDelay(0))

	_, err := client.Fetch(context.Background(), "kojied", 10)
	require.Error(t, err)
}

func TestWebFetchServerErrorSoftStops(t *testing.T) {
	client := newTestWebClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// Non-200 statuses are a soft stop, not a transport failure: the
	// result is empty but no error is raised.
	result, err := client.Fetch(context.Background(), "kojied", 10)
	require.NoError(t, err)
	assert.False(t, result.Usable())
}
