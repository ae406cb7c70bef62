// Package models defines the core data types shared by the acquisition,
// persona and graph pipelines.
package models

import (
	"strings"
	"time"
)

// FetchMethod records which adapter produced an acquisition result.
type FetchMethod string

const (
	// MethodAPI means the authenticated Reddit API client was used.
	MethodAPI FetchMethod = "api"
	// MethodWeb means the anonymous JSON listing fallback was used.
	MethodWeb FetchMethod = "web_fallback"
)

// Post is a single Reddit submission, normalized at the adapter boundary.
// Immutable once fetched. JSON tags match the raw-data file format.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Body        string  `json:"selftext"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
}

// Comment is a single Reddit comment, normalized at the adapter boundary.
type Comment struct {
	ID              string  `json:"id"`
	Body            string  `json:"body"`
	URL             string  `json:"url"`
	Subreddit       string  `json:"subreddit"`
	Score           int     `json:"score"`
	CreatedUTC      float64 `json:"created_utc"`
	SubmissionTitle string  `json:"submission_title"`
}

// AcquisitionResult holds everything fetched for one subject.
// Submissions and comments preserve source ordering (newest first).
type AcquisitionResult struct {
	Username         string      `json:"username"`
	Submissions      []Post      `json:"submissions"`
	Comments         []Comment   `json:"comments"`
	TotalSubmissions int         `json:"total_submissions"`
	TotalComments    int         `json:"total_comments"`
	Method           FetchMethod `json:"method"`
	ScrapedAt        time.Time   `json:"scraped_at"`
}

// Usable reports whether the result contains any content at all.
// Empty results are never accepted by the orchestrator.
func (r *AcquisitionResult) Usable() bool {
	if r == nil {
		return false
	}
	return len(r.Submissions)+len(r.Comments) > 0
}

// NormalizeUsername extracts a bare username from raw user input, which may
// be a profile URL ("https://www.reddit.com/user/kojied/"), a short form
// ("/u/kojied") or already a bare name.
func NormalizeUsername(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.Contains(s, "/user/"):
		s = s[strings.LastIndex(s, "/user/")+len("/user/"):]
	case strings.Contains(s, "/u/"):
		s = s[strings.LastIndex(s, "/u/")+len("/u/"):]
	}
	return strings.Trim(s, "/")
}
