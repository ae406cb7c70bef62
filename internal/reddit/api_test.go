package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAPIServer serves the token endpoint plus the given API handler
// and returns a probed client.
func newTestAPIServer(t *testing.T, api http.HandlerFunc) (*APIClient, *int) {
	t.Helper()

	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-id" || pass != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"access_token": "tok123", "expires_in": 3600}`))
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewAPIClient(context.Background(), APIConfig{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		UserAgent:    "PersonaBot/1.0 test",
		TokenURL:     srv.URL + "/api/v1/access_token",
		BaseURL:      srv.URL,
	}, nil)
	return client, &tokenRequests
}

func TestAPIClientFetch(t *testing.T) {
	client, tokenRequests := newTestAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.Contains(r.URL.Path, "/r/test/hot"):
			w.Write(listingPage(kindSubmission, 0, 1, ""))
		case strings.Contains(r.URL.Path, "/submitted"):
			w.Write(listingPage(kindSubmission, 0, 4, ""))
		case strings.Contains(r.URL.Path, "/comments"):
			w.Write(listingPage(kindComment, 0, 6, ""))
		default:
			http.NotFound(w, r)
		}
	})
	require.True(t, client.Available())

	result, err := client.Fetch(context.Background(), "kojied", 100)
	require.NoError(t, err)
	assert.Equal(t, models.MethodAPI, result.Method)
	assert.Len(t, result.Submissions, 4)
	assert.Len(t, result.Comments, 6)

	// The token survives the session: one exchange for probe plus fetches.
	assert.Equal(t, 1, *tokenRequests)
}

func TestAPIClientUserNotFound(t *testing.T) {
	client, _ := newTestAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/r/test/hot") {
			w.Write(listingPage(kindSubmission, 0, 1, ""))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background(), "ghost_user", 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAPIClientRateLimited(t *testing.T) {
	client, _ := newTestAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/r/test/hot") {
			w.Write(listingPage(kindSubmission, 0, 1, ""))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Fetch(context.Background(), "kojied", 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestAPIClientProbeFailureMarksUnavailable(t *testing.T) {
	client, _ := newTestAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.False(t, client.Available())
}

func TestAPIClientWithoutCredentials(t *testing.T) {
	client := NewAPIClient(context.Background(), APIConfig{}, nil)
	assert.False(t, client.Available())
}

func TestAPIClientBadCredentials(t *testing.T) {
	client, _ := newTestAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingPage(kindSubmission, 0, 1, ""))
	})
	// Swap in wrong credentials and force a token refresh.
	client.clientSecret = "wrong"
	client.token = ""

	_, err := client.Fetch(context.Background(), "kojied", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
