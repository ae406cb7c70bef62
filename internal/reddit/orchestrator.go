package reddit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/personagraph/internal/models"
	"github.com/raphaelgruber/personagraph/internal/progress"
)

// acquisition states. The orchestrator moves strictly forward:
// TryAPI -> TryWebFallback -> Done|Failed.
type acquisitionState int

const (
	stateTryAPI acquisitionState = iota
	stateTryWebFallback
	stateDone
	stateFailed
)

func (s acquisitionState) String() string {
	switch s {
	case stateTryAPI:
		return "try_api"
	case stateTryWebFallback:
		return "try_web_fallback"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// availabler is satisfied by adapters that can be unavailable for the whole
// session (the API client after a failed probe).
type availabler interface {
	Available() bool
}

// Orchestrator drives acquisition across both adapters. The API adapter is
// tried first when available; any shortfall there (unavailable, error,
// empty result) transitions to the web fallback. API-specific errors are
// never surfaced to the caller while the fallback can still succeed.
type Orchestrator struct {
	api      Fetcher
	web      Fetcher
	logger   *slog.Logger
	progress *progress.Reporter
}

// NewOrchestrator wires the two adapters. api may be nil when credentials
// are absent. reporter may be nil.
func NewOrchestrator(api, web Fetcher, logger *slog.Logger, reporter *progress.Reporter) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{api: api, web: web, logger: logger, progress: reporter}
}

// Fetch normalizes the raw user input and runs the acquisition state
// machine. The returned result is always usable; a result with zero
// records becomes ErrNoData instead. Per-category counts never exceed
// limit.
func (o *Orchestrator) Fetch(ctx context.Context, rawUser string, limit int) (*models.AcquisitionResult, error) {
	username := models.NormalizeUsername(rawUser)
	if username == "" {
		return nil, fmt.Errorf("empty username after normalizing %q", rawUser)
	}
	o.progress.Publish(progress.StageNormalize, fmt.Sprintf("analyzing user u/%s", username), 0)

	state := stateTryAPI
	var webErr error

	for {
		switch state {
		case stateTryAPI:
			result, ok := o.tryAPI(ctx, username, limit)
			if ok {
				state = stateDone
				o.progress.Publish(progress.StageDone, "data collection complete", len(result.Submissions)+len(result.Comments))
				return result, nil
			}
			state = stateTryWebFallback

		case stateTryWebFallback:
			o.progress.Publish(progress.StageWebFetch, "falling back to web scraping", 0)
			result, err := o.web.Fetch(ctx, username, limit)
			if err != nil {
				o.logger.Error("web fallback failed", "username", username, "error", err)
				webErr = err
				state = stateFailed
				continue
			}
			if !result.Usable() {
				o.logger.Info("web fallback returned no records", "username", username)
				state = stateFailed
				continue
			}
			o.progress.Publish(progress.StageDone, "data collection complete", len(result.Submissions)+len(result.Comments))
			return result, nil

		case stateFailed:
			// Transport failure on the last resort surfaces as itself;
			// clean zero-record outcomes become the deliberately
			// ambiguous no-data error.
			if webErr != nil {
				return nil, fmt.Errorf("web fallback: %w", webErr)
			}
			return nil, fmt.Errorf("%w: u/%s", ErrNoData, username)
		}
	}
}

// tryAPI attempts the API adapter. Any failure reason (nil adapter, marked
// unavailable, error, unusable result) just means "move on": the reason is
// logged, never propagated.
func (o *Orchestrator) tryAPI(ctx context.Context, username string, limit int) (*models.AcquisitionResult, bool) {
	if o.api == nil {
		return nil, false
	}
	if a, ok := o.api.(availabler); ok && !a.Available() {
		o.logger.Info("api adapter unavailable, skipping")
		return nil, false
	}

	o.progress.Publish(progress.StageAPIFetch, "using reddit API", 0)
	result, err := o.api.Fetch(ctx, username, limit)
	if err != nil {
		o.logger.Warn("api fetch failed, will try web fallback", "username", username, "error", err)
		return nil, false
	}
	if !result.Usable() {
		o.logger.Info("api returned no records, will try web fallback", "username", username)
		return nil, false
	}
	return result, true
}
