package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"
)

// APIClient fetches user activity through the authenticated Reddit API
// using an application-only (client credentials) OAuth token.
type APIClient struct {
	httpClient *http.Client
	tokenURL   string
	apiURL     string

	clientID     string
	clientSecret string
	userAgent    string

	token       string
	tokenExpiry time.Time

	available bool
	logger    *slog.Logger

	// Progress receives fetch-count milestone events. Optional.
	Progress *progress.Reporter
}

// APIConfig holds credentials and endpoint overrides for the API client.
// TokenURL and BaseURL default to the public Reddit endpoints.
type APIConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	TokenURL     string
	BaseURL      string
}

// NewAPIClient builds the API adapter and probes connectivity with a single
// read-only request (one hot item from r/test). A failed probe marks the
// client unavailable for the rest of the session; it is not retried per
// request. The constructor itself never fails: availability is a state, not
// an error.
func NewAPIClient(ctx context.Context, cfg APIConfig, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &APIClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		logger:       logger,
	}
	if cfg.TokenURL != "" {
		c.tokenURL = cfg.TokenURL
	}
	if cfg.BaseURL != "" {
		c.apiURL = cfg.BaseURL
	}

	if c.clientID == "" || c.clientSecret == "" {
		logger.Info("reddit API credentials not configured, adapter unavailable")
		return c
	}

	if err := c.probe(ctx); err != nil {
		logger.Warn("reddit API probe failed, adapter unavailable for this session", "error", err)
		return c
	}

	c.available = true
	logger.Info("reddit API connection established")
	return c
}

// Available reports whether the construction-time probe succeeded.
func (c *APIClient) Available() bool {
	return c.available
}

// Name implements Fetcher.
func (c *APIClient) Name() string {
	return "api"
}

// Fetch retrieves submissions then comments, newest first, each capped at
// limit.
func (c *APIClient) Fetch(ctx context.Context, username string, limit int) (*models.AcquisitionResult, error) {
	subs, err := c.fetchSubmissions(ctx, username, limit)
	if err != nil {
		return nil, err
	}
	c.Progress.Publish(progress.StageAPIFetch, fmt.Sprintf("fetched %d submissions", len(subs)), len(subs))

	comments, err := c.fetchComments(ctx, username, limit)
	if err != nil {
		return nil, err
	}
	c.Progress.Publish(progress.StageAPIFetch, fmt.Sprintf("fetched %d comments", len(comments)), len(comments))

	return &models.AcquisitionResult{
		Username:         username,
		Submissions:      subs,
		Comments:         comments,
		TotalSubmissions: len(subs),
		TotalComments:    len(comments),
		Method:           models.MethodAPI,
		ScrapedAt:        time.Now(),
	}, nil
}

func (c *APIClient) fetchSubmissions(ctx context.Context, username string, limit int) ([]models.Post, error) {
	path := fmt.Sprintf("/user/%s/submitted?sort=new&limit=%d", url.PathEscape(username), limit)
	lst, err := c.getListing(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	posts := make([]models.Post, 0, len(lst.Data.Children))
	for i, child := range lst.Data.Children {
		if child.Kind != kindSubmission || len(posts) >= limit {
			continue
		}
		posts = append(posts, child.Data.toPost())
		if (i+1)%progress.Milestone == 0 {
			c.Progress.Publish(progress.StageAPIFetch, fmt.Sprintf("fetched %d submissions", i+1), i+1)
		}
	}
	return posts, nil
}

func (c *APIClient) fetchComments(ctx context.Context, username string, limit int) ([]models.Comment, error) {
	path := fmt.Sprintf("/user/%s/comments?sort=new&limit=%d", url.PathEscape(username), limit)
	lst, err := c.getListing(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(lst.Data.Children))
	for i, child := range lst.Data.Children {
		if child.Kind != kindComment || len(comments) >= limit {
			continue
		}
		comments = append(comments, child.Data.toComment())
		if (i+1)%progress.Milestone == 0 {
			c.Progress.Publish(progress.StageAPIFetch, fmt.Sprintf("fetched %d comments", i+1), i+1)
		}
	}
	return comments, nil
}

// probe performs the read-only connectivity check.
func (c *APIClient) probe(ctx context.Context) error {
	_, err := c.getListing(ctx, "/r/test/hot?limit=1")
	return err
}

// getListing performs an authenticated GET and decodes a listing, mapping
// HTTP status to the package's error taxonomy.
func (c *APIClient) getListing(ctx context.Context, path string) (*listing, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, body)
	}

	var lst listing
	if err := json.NewDecoder(resp.Body).Decode(&lst); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &lst, nil
}

// ensureToken fetches or refreshes the application-only OAuth token.
func (c *APIClient) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("token request: status %d: %s", resp.StatusCode, body)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token request: empty access token")
	}

	c.token = tok.AccessToken
	// Refresh one minute early.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return nil
}
