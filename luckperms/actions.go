package luckperms

import (
	"context"
	"net/http"
)

// SubmitAction records an entry in the server's action log
func (c *Client) SubmitAction(ctx context.Context, action Action) error {
	return c.do(ctx, call{op: "SubmitAction", method: http.MethodPost, path: []string{"action"}, body: action}, nil)
}
