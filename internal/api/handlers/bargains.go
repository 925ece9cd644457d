package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/bargain-tracker/internal/store"
	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// BargainStore is the watcher registry as the bargains endpoints use it.
type BargainStore interface {
	List(ctx context.Context, q *store.WatcherQuery) ([]domain.Watcher, int, error)
	GetByID(ctx context.Context, id string) (*domain.Watcher, error)
	DeleteByID(ctx context.Context, id string) error
}

// Tracker adds a watcher after fetching the product page.
type Tracker interface {
	Track(ctx context.Context, email, productURL string) (*domain.Watcher, error)
}

// BargainHandler serves the watcher ("bargain") endpoints.
type BargainHandler struct {
	store   BargainStore
	tracker Tracker
}

// NewBargainHandler creates a new BargainHandler.
func NewBargainHandler(s BargainStore, t Tracker) *BargainHandler {
	return &BargainHandler{store: s, tracker: t}
}

// ListBargainsInput filters and pages the watcher list.
type ListBargainsInput struct {
	Email      string `query:"email"       doc:"Only watchers of this email"`
	ProductURL string `query:"product_url" doc:"Only watchers of this product URL"`
	Limit      int    `query:"limit"       doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
	Offset     int    `query:"offset"      doc:"Pagination offset"              minimum:"0"`
	OrderBy    string `query:"order_by"    doc:"Sort field"                     enum:"created_at,product_title,"`
}

// ListBargainsOutput is a page of watchers and the unpaged total.
type ListBargainsOutput struct {
	Body struct {
		Bargains []domain.Watcher `json:"bargains"`
		Total    int              `json:"total"`
		Limit    int              `json:"limit"`
		Offset   int              `json:"offset"`
	}
}

// BargainIDInput addresses one watcher.
type BargainIDInput struct {
	ID string `path:"id" doc:"Watcher id"`
}

// BargainOutput is a single watcher.
type BargainOutput struct {
	Body *domain.Watcher
}

// AddBargainInput is the body of an add request.
type AddBargainInput struct {
	Body struct {
		Email      string `json:"email"       doc:"Email to notify"           minLength:"1" example:"me@example.com"`
		ProductURL string `json:"product_url" doc:"Product page to watch"     minLength:"1" example:"https://www.amazon.in/dp/B0TEST"`
	}
}

// ListBargains returns watchers matching the filters.
func (h *BargainHandler) ListBargains(ctx context.Context, input *ListBargainsInput) (*ListBargainsOutput, error) {
	q := &store.WatcherQuery{
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}
	if input.Email != "" {
		q.Email = &input.Email
	}
	if input.ProductURL != "" {
		q.ProductURL = &input.ProductURL
	}

	watchers, total, err := h.store.List(ctx, q)
	if err != nil {
		return nil, apiError("listing bargains", err)
	}
	if watchers == nil {
		watchers = []domain.Watcher{}
	}

	resp := &ListBargainsOutput{}
	resp.Body.Bargains = watchers
	resp.Body.Total = total
	resp.Body.Limit = q.Limit
	resp.Body.Offset = q.Offset
	return resp, nil
}

// GetBargain returns one watcher.
func (h *BargainHandler) GetBargain(ctx context.Context, input *BargainIDInput) (*BargainOutput, error) {
	w, err := h.store.GetByID(ctx, input.ID)
	if err != nil {
		return nil, apiError("getting bargain", err)
	}
	return &BargainOutput{Body: w}, nil
}

// AddBargain starts tracking a product for an email.
func (h *BargainHandler) AddBargain(ctx context.Context, input *AddBargainInput) (*BargainOutput, error) {
	w, err := h.tracker.Track(ctx, input.Body.Email, input.Body.ProductURL)
	if err != nil {
		return nil, apiError("adding bargain", err)
	}
	return &BargainOutput{Body: w}, nil
}

// DeleteBargain removes a watcher. Deleting an unknown id succeeds.
func (h *BargainHandler) DeleteBargain(ctx context.Context, input *BargainIDInput) (*struct{}, error) {
	if err := h.store.DeleteByID(ctx, input.ID); err != nil {
		return nil, apiError("deleting bargain", err)
	}
	return nil, nil
}

// RegisterBargainRoutes registers the watcher endpoints with the Huma API.
func RegisterBargainRoutes(api huma.API, h *BargainHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bargains",
		Method:      http.MethodGet,
		Path:        "/api/v1/bargains",
		Summary:     "List tracked bargains",
		Tags:        []string{"bargains"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListBargains)

	huma.Register(api, huma.Operation{
		OperationID: "get-bargain",
		Method:      http.MethodGet,
		Path:        "/api/v1/bargains/{id}",
		Summary:     "Get a tracked bargain",
		Tags:        []string{"bargains"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetBargain)

	huma.Register(api, huma.Operation{
		OperationID:   "add-bargain",
		Method:        http.MethodPost,
		Path:          "/api/v1/bargains",
		Summary:       "Track a product",
		Description:   "Fetches the product page, ensures the email's notification channel and records the watcher.",
		Tags:          []string{"bargains"},
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
			http.StatusServiceUnavailable,
		},
	}, h.AddBargain)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-bargain",
		Method:        http.MethodDelete,
		Path:          "/api/v1/bargains/{id}",
		Summary:       "Stop tracking a product",
		Tags:          []string{"bargains"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusInternalServerError},
	}, h.DeleteBargain)
}
