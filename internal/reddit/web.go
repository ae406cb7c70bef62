package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
)

const (
	defaultWebURL = "https://www.reddit.com"

	// webBatchSize is the page size of the anonymous listing endpoint.
	webBatchSize = 25

	// webPageDelay is the fixed pause between page requests. Crude
	// backpressure, but request volume is bounded by the fetch limit.
	webPageDelay = time.Second

	// webUserAgent mimics a browser; the listing endpoint rejects
	// obviously scripted agents far more often.
	webUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
)

// WebClient fetches user activity through the anonymous JSON listing
// endpoints. It needs no credentials and pages with the listing cursor.
//
// A 403 response ends collection for that content type immediately and the
// records gathered so far are returned, not discarded: partial data beats
// total failure when Reddit throttles anonymous access.
type WebClient struct {
	httpClient *http.Client
	baseURL    string
	pageDelay  time.Duration
	logger     *slog.Logger

	// Progress receives fetch-count milestone events. Optional.
	Progress *progress.Reporter
}

// WebOption customizes a WebClient.
type WebOption func(*WebClient)

// WithBaseURL overrides the endpoint, used by tests.
func WithBaseURL(u string) WebOption {
	return func(c *WebClient) { c.baseURL = u }
}

// WithPageDelay overrides the inter-page delay, used by tests.
func WithPageDelay(d time.Duration) WebOption {
	return func(c *WebClient) { c.pageDelay = d }
}

// NewWebClient builds the anonymous fallback adapter.
func NewWebClient(logger *slog.Logger, opts ...WebOption) *WebClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WebClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultWebURL,
		pageDelay:  webPageDelay,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Fetcher.
func (c *WebClient) Name() string {
	return "web_fallback"
}

// Fetch pages through comments then submissions, accumulating batch by
// batch until limit is reached or the source stops returning a cursor.
// A transport failure in one content type never aborts the other; it only
// surfaces when both content types came back empty, so partial data always
// wins over an error.
func (c *WebClient) Fetch(ctx context.Context, username string, limit int) (*models.AcquisitionResult, error) {
	var transportErr error

	var comments []models.Comment
	err := c.paginate(ctx, username, "comments", limit, func(children []thing) {
		for _, child := range children {
			if child.Kind != kindComment || len(comments) >= limit {
				continue
			}
			comments = append(comments, child.Data.toComment())
		}
		c.Progress.Publish(progress.StageWebFetch, fmt.Sprintf("fetched %d comments", len(comments)), len(comments))
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("comment collection failed", "username", username, "error", err)
		transportErr = err
	}

	var subs []models.Post
	err = c.paginate(ctx, username, "submitted", limit, func(children []thing) {
		for _, child := range children {
			if child.Kind != kindSubmission || len(subs) >= limit {
				continue
			}
			subs = append(subs, child.Data.toPost())
		}
		c.Progress.Publish(progress.StageWebFetch, fmt.Sprintf("fetched %d submissions", len(subs)), len(subs))
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("submission collection failed", "username", username, "error", err)
		transportErr = err
	}

	if len(comments) == 0 && len(subs) == 0 && transportErr != nil {
		return nil, transportErr
	}

	return &models.AcquisitionResult{
		Username:         username,
		Submissions:      subs,
		Comments:         comments,
		TotalSubmissions: len(subs),
		TotalComments:    len(comments),
		Method:           models.MethodWeb,
		ScrapedAt:        time.Now(),
	}, nil
}

// paginate walks one content type ("comments" or "submitted") page by page.
// Collection for the content type stops, keeping partial results, on 403,
// on any other non-200 status, on an empty batch or a missing cursor. Only
// transport-level failures on the very first page surface as errors;
// mid-pagination failures also keep partials.
func (c *WebClient) paginate(ctx context.Context, username, contentType string, limit int, accept func([]thing)) error {
	after := ""
	fetched := 0
	firstPage := true

	for fetched < limit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u := fmt.Sprintf("%s/user/%s/%s.json?limit=%d", c.baseURL, url.PathEscape(username), contentType, webBatchSize)
		if after != "" {
			u += "&after=" + url.QueryEscape(after)
		}

		lst, status, err := c.getPage(ctx, u)
		if err != nil {
			if firstPage {
				return fmt.Errorf("fetch %s: %w", contentType, err)
			}
			c.logger.Warn("page request failed mid-pagination, keeping partial results",
				"content_type", contentType, "fetched", fetched, "error", err)
			return nil
		}
		if status == http.StatusForbidden {
			c.logger.Warn("access forbidden, stopping collection for content type",
				"content_type", contentType, "fetched", fetched)
			return nil
		}
		if status != http.StatusOK {
			c.logger.Warn("unexpected status, stopping collection for content type",
				"content_type", contentType, "status", status, "fetched", fetched)
			return nil
		}

		if len(lst.Data.Children) == 0 {
			return nil
		}

		accept(lst.Data.Children)
		fetched += len(lst.Data.Children)
		firstPage = false

		after = lst.Data.After
		if after == "" {
			return nil
		}

		if fetched < limit {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}
	}
	return nil
}

// getPage performs one listing request. The status code is returned
// separately so the caller can apply the soft-stop policy; the listing is
// only decoded on 200.
func (c *WebClient) getPage(ctx context.Context, url string) (*listing, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var lst listing
	if err := json.NewDecoder(resp.Body).Decode(&lst); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode listing: %w", err)
	}
	return &lst, resp.StatusCode, nil
}
