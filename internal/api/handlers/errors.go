package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/bargain-tracker/internal/engine"
	"github.com/donaldgifford/bargain-tracker/internal/registry"
	"github.com/donaldgifford/bargain-tracker/internal/scrape"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	"github.com/donaldgifford/bargain-tracker/internal/subscription"
)

// apiError maps a domain error to its HTTP status. Unknown errors are 500s
// prefixed with what was being attempted.
func apiError(action string, err error) error {
	switch {
	case errors.Is(err, registry.ErrDuplicateWatcher):
		return huma.Error409Conflict("product is already tracked for this email")
	case errors.Is(err, engine.ErrJobRunning):
		return huma.Error409Conflict("distribution is already running")
	case errors.Is(err, registry.ErrInvalidWatcher),
		errors.Is(err, subscription.ErrInvalidEmail):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, scrape.ErrInvalidSource),
		errors.Is(err, scrape.ErrUnreachable):
		return huma.Error400BadRequest("not a recognized product page")
	case errors.Is(err, subscription.ErrChannelServiceUnavailable):
		return huma.Error503ServiceUnavailable("notification service unavailable, try again later")
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("not found")
	default:
		return huma.Error500InternalServerError(action + " failed: " + err.Error())
	}
}
