package client

import "context"

// Distribute triggers a distribution and returns the number of tasks
// enqueued.
func (c *Client) Distribute(ctx context.Context) (int, error) {
	var resp struct {
		Enqueued int `json:"enqueued"`
	}
	if err := c.post(ctx, "/api/v1/distribute", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Enqueued, nil
}

// QueueDepth returns the approximate number of pending tasks.
func (c *Client) QueueDepth(ctx context.Context) (int, error) {
	var resp struct {
		Pending int `json:"pending"`
	}
	if err := c.get(ctx, "/api/v1/queue", &resp); err != nil {
		return 0, err
	}
	return resp.Pending, nil
}
