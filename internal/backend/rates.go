package backend

import (
	"context"
	"fmt"
	"net/http"

	"shipgate/internal/model"
)

// RateRequest is the body of POST /order. Field names are the backend's own.
type RateRequest struct {
	PickupPincode   string  `json:"Pickup_pincode"`
	DeliveryPincode string  `json:"Delivery_pincode"`
	COD             bool    `json:"cod"`
	TotalOrderValue int     `json:"total_order_value"`
	Weight          float64 `json:"weight"`
}

// Rates returns the ranked courier options for a shipment. The backend's
// ordering is preserved; callers must not re-sort.
func (c *Client) Rates(ctx context.Context, req RateRequest) ([]model.RateQuote, error) {
	var quotes []model.RateQuote
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/order", req, &quotes); err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	return quotes, nil
}
