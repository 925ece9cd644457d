package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Distributor runs a distribution under the job lock.
type Distributor interface {
	RunDistribution(ctx context.Context) (int, error)
}

// QueueInspector reports the queue depth.
type QueueInspector interface {
	QueueDepth(ctx context.Context) (int, error)
}

// DistributeHandler serves the manual distribution trigger and queue depth.
type DistributeHandler struct {
	distributor Distributor
	queue       QueueInspector
}

// NewDistributeHandler creates a new DistributeHandler.
func NewDistributeHandler(d Distributor, q QueueInspector) *DistributeHandler {
	return &DistributeHandler{distributor: d, queue: q}
}

// DistributeOutput reports how many tasks a manual distribution enqueued.
type DistributeOutput struct {
	Body struct {
		Status   string `json:"status"   example:"distribution completed"`
		Enqueued int    `json:"enqueued" example:"42"                   doc:"Tasks enqueued, one per catalog product"`
	}
}

// QueueDepthOutput is the approximate number of waiting tasks.
type QueueDepthOutput struct {
	Body struct {
		Pending int `json:"pending" doc:"Tasks waiting or in flight"`
	}
}

// Distribute enqueues one task per catalog product now.
func (h *DistributeHandler) Distribute(ctx context.Context, _ *struct{}) (*DistributeOutput, error) {
	n, err := h.distributor.RunDistribution(ctx)
	if err != nil {
		return nil, apiError("distribution", err)
	}

	resp := &DistributeOutput{}
	resp.Body.Status = "distribution completed"
	resp.Body.Enqueued = n
	return resp, nil
}

// QueueDepth returns the queue's pending count.
func (h *DistributeHandler) QueueDepth(ctx context.Context, _ *struct{}) (*QueueDepthOutput, error) {
	n, err := h.queue.QueueDepth(ctx)
	if err != nil {
		return nil, apiError("reading queue depth", err)
	}

	resp := &QueueDepthOutput{}
	resp.Body.Pending = n
	return resp, nil
}

// RegisterDistributeRoutes registers the distribution endpoints.
func RegisterDistributeRoutes(api huma.API, h *DistributeHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-distribute",
		Method:      http.MethodPost,
		Path:        "/api/v1/distribute",
		Summary:     "Trigger a distribution",
		Description: "Snapshots every catalog product into a monitoring task on the queue.",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusConflict, http.StatusInternalServerError},
	}, h.Distribute)

	huma.Register(api, huma.Operation{
		OperationID: "get-queue-depth",
		Method:      http.MethodGet,
		Path:        "/api/v1/queue",
		Summary:     "Get queue depth",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.QueueDepth)
}
