package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

// Subscriptions reads and toggles per-email subscriptions.
type Subscriptions interface {
	Get(ctx context.Context, email string) (*domain.Subscription, error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) (*domain.Subscription, error)
}

// SubscriptionHandler serves the subscription endpoints.
type SubscriptionHandler struct {
	subs Subscriptions
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(s Subscriptions) *SubscriptionHandler {
	return &SubscriptionHandler{subs: s}
}

// SubscriptionEmailInput addresses one subscription.
type SubscriptionEmailInput struct {
	Email string `path:"email" doc:"Subscriber email"`
}

// SetSubscriptionInput is the body of a subscribe/unsubscribe request.
type SetSubscriptionInput struct {
	Email string `path:"email" doc:"Subscriber email"`
	Body  struct {
		Subscribed bool `json:"subscribed" doc:"Whether price changes are delivered"`
	}
}

// SubscriptionOutput is a single subscription.
type SubscriptionOutput struct {
	Body *domain.Subscription
}

// GetSubscription returns the subscription of an email.
func (h *SubscriptionHandler) GetSubscription(
	ctx context.Context,
	input *SubscriptionEmailInput,
) (*SubscriptionOutput, error) {
	sub, err := h.subs.Get(ctx, input.Email)
	if err != nil {
		return nil, apiError("getting subscription", err)
	}
	return &SubscriptionOutput{Body: sub}, nil
}

// SetSubscription subscribes or unsubscribes an email, creating its channel
// first if needed.
func (h *SubscriptionHandler) SetSubscription(
	ctx context.Context,
	input *SetSubscriptionInput,
) (*SubscriptionOutput, error) {
	sub, err := h.subs.SetSubscribed(ctx, input.Email, input.Body.Subscribed)
	if err != nil {
		return nil, apiError("updating subscription", err)
	}
	return &SubscriptionOutput{Body: sub}, nil
}

// RegisterSubscriptionRoutes registers the subscription endpoints.
func RegisterSubscriptionRoutes(api huma.API, h *SubscriptionHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-subscription",
		Method:      http.MethodGet,
		Path:        "/api/v1/subscriptions/{email}",
		Summary:     "Get an email's subscription",
		Tags:        []string{"subscriptions"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetSubscription)

	huma.Register(api, huma.Operation{
		OperationID: "set-subscription",
		Method:      http.MethodPut,
		Path:        "/api/v1/subscriptions/{email}",
		Summary:     "Subscribe or unsubscribe an email",
		Tags:        []string{"subscriptions"},
		Errors:      []int{http.StatusBadRequest, http.StatusServiceUnavailable, http.StatusInternalServerError},
	}, h.SetSubscription)
}
