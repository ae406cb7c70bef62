// Package reddit acquires a user's public submissions and comments, either
// through the authenticated API or the anonymous JSON listing fallback, and
// normalizes both into the shared acquisition types.
package reddit

import (
	"context"
	"errors"

	"github.com/raphaelgruber/personagraph/internal/models"
)

// Sentinel errors for acquisition. Check with errors.Is.
var (
	// ErrNotFound indicates the user endpoint returned 404. Reddit does
	// not distinguish unknown users from suspended ones here, and neither
	// do we.
	ErrNotFound = errors.New("user not found")

	// ErrRateLimited indicates the remote refused further requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoData indicates both adapters returned zero usable records.
	// Deliberately ambiguous: "does not exist", "private profile" and
	// "no public activity" all collapse into this.
	ErrNoData = errors.New("no data found for user")
)

// Fetcher fetches a user's recent activity. Both adapter variants satisfy
// this contract and produce the same normalized result shape.
type Fetcher interface {
	// Fetch retrieves up to limit submissions and up to limit comments,
	// newest first.
	Fetch(ctx context.Context, username string, limit int) (*models.AcquisitionResult, error)

	// Name identifies the adapter in logs and progress events.
	Name() string
}
