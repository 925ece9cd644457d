// Package handlers implements the HTTP operations of the bargain tracker API.
// Domain operations are registered with huma; the health probes are plain
// Echo handlers.
package handlers

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
