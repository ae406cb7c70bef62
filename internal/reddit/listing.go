package reddit

import "github.com/raphaelgruber/personagraph/internal/models"

// Thing kinds in Reddit listings.
const (
	kindComment    = "t1"
	kindSubmission = "t3"
)

// listing is the wire shape shared by the API and the anonymous JSON
// endpoints: {"kind":"Listing","data":{"after":...,"children":[...]}}.
type listing struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	After    string  `json:"after"`
	Children []thing `json:"children"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

// thingData carries the union of submission (t3) and comment (t1) fields we
// consume. Raw untyped maps never leave this package: normalization into
// models.Post / models.Comment happens right here at the adapter boundary.
type thingData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	LinkTitle   string  `json:"link_title"`
}

const permalinkBase = "https://www.reddit.com"

func (d thingData) toPost() models.Post {
	return models.Post{
		ID:          d.ID,
		Title:       d.Title,
		Body:        d.Selftext,
		URL:         permalinkBase + d.Permalink,
		Subreddit:   d.Subreddit,
		Score:       d.Score,
		CreatedUTC:  d.CreatedUTC,
		NumComments: d.NumComments,
	}
}

func (d thingData) toComment() models.Comment {
	return models.Comment{
		ID:              d.ID,
		Body:            d.Body,
		URL:             permalinkBase + d.Permalink,
		Subreddit:       d.Subreddit,
		Score:           d.Score,
		CreatedUTC:      d.CreatedUTC,
		SubmissionTitle: d.LinkTitle,
	}
}
