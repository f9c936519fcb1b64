package backend

import (
	"context"
	"net/http"
	"net/url"

	"shipgate/internal/gateway"
)

// LabelEndpoint is one step of the label fallback chain.
type LabelEndpoint struct {
	Name   string
	Method string
	Path   func(orderID string) string
}

// LabelEndpoints is the ordered fallback chain for retrieving a shipping
// label: refresh from the upstream aggregator first, then the direct fetch,
// then the legacy generate endpoint. Each step is tried only after the
// previous one failed to yield a usable payload.
var LabelEndpoints = []LabelEndpoint{
	{
		Name:   "refresh-label",
		Method: http.MethodPost,
		Path:   func(id string) string { return "/orders/" + url.PathEscape(id) + "/refresh-label" },
	},
	{
		Name:   "label",
		Method: http.MethodGet,
		Path:   func(id string) string { return "/orders/" + url.PathEscape(id) + "/label" },
	},
	{
		Name:   "generate-label",
		Method: http.MethodPost,
		Path:   func(id string) string { return "/orders/" + url.PathEscape(id) + "/generate-label" },
	},
}

// FetchLabelRaw hits one label endpoint and hands back the raw response so
// the caller can distinguish PDF bytes from JSON payloads.
func (c *Client) FetchLabelRaw(ctx context.Context, ep LabelEndpoint, orderID string) (*gateway.Response, error) {
	return c.gw.Do(ctx, ep.Method, ep.Path(orderID), nil)
}
