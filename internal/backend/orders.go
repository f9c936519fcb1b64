package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"shipgate/internal/model"
)

type ordersResponse struct {
	Status bool          `json:"status"`
	Data   []model.Order `json:"data"`
}

func (c *Client) UserOrders(ctx context.Context) ([]model.Order, error) {
	return c.fetchOrders(ctx, "/user-orders")
}

// AllOrders is the admin view; the backend serves it without a session.
func (c *Client) AllOrders(ctx context.Context) ([]model.Order, error) {
	return c.fetchOrders(ctx, "/all-orders")
}

func (c *Client) fetchOrders(ctx context.Context, path string) ([]model.Order, error) {
	var resp ordersResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return resp.Data, nil
}

// CreateOrderRequest is the full POST /create-order payload. Shapes mirror
// the backend contract; omitted optional blocks stay null on the wire.
type CreateOrderRequest struct {
	OrderID               string                 `json:"orderId"`
	OrderDate             string                 `json:"orderDate"`
	PickupAddressName     string                 `json:"pickupAddressName"`
	StoreName             string                 `json:"storeName"`
	BillingIsShipping     bool                   `json:"billingIsShipping"`
	ShippingAddress       model.ShippingAddress  `json:"shippingAddress"`
	BillingAddress        *model.ShippingAddress `json:"billingAddress"`
	OrderItems            []model.OrderItem      `json:"orderItems"`
	PaymentMethod         string                 `json:"paymentMethod"`
	ShippingCharges       float64                `json:"shippingCharges"`
	CODCharges            float64                `json:"codCharges"`
	PrepaidAmount         float64                `json:"prepaidAmount"`
	TotalOrderValue       float64                `json:"totalOrderValue"`
	PackageDetails        model.PackageDetails   `json:"packageDetails"`
	SelectShippingCharges float64                `json:"selectShippingCharges"`
	SelectedCourierName   string                 `json:"selectedCourierName,omitempty"`
	SelectedFreightMode   string                 `json:"selectedFreightMode,omitempty"`
}

type createOrderResponse struct {
	Message string `json:"message"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var resp createOrderResponse
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/create-order", req, &resp); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return resp.Message, nil
}

type statusUpdateResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	path := "/orders/" + url.PathEscape(orderID) + "/update-status"
	body := map[string]any{"status": status}
	var resp statusUpdateResponse
	if err := c.gw.DoJSON(ctx, http.MethodPatch, path, body, &resp); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !resp.Status {
		return fmt.Errorf("update status: %s", resp.Message)
	}
	return nil
}

// ScheduleRequest commits a courier selection for one order.
type ScheduleRequest struct {
	SelectShippingCharges float64 `json:"selectShippingCharges"`
	SelectedCourierName   string  `json:"selectedCourierName"`
	SelectedFreightMode   string  `json:"selectedFreightMode"`
	PaymentMethod         string  `json:"paymentMethod"`
	CourierCode           string  `json:"courier_code"`
}

// ScheduleResult carries whatever the backend chose to include inline: the
// new wallet balance (saves a round-trip), the assigned AWB and label URL,
// and optionally the updated order itself.
type ScheduleResult struct {
	Status        bool         `json:"status"`
	Message       string       `json:"message"`
	WalletBalance *float64     `json:"wallet_balance"`
	AWB           string       `json:"awb"`
	LabelURL      string       `json:"labelUrl"`
	Order         *model.Order `json:"order"`
}

func (c *Client) ScheduleOrder(ctx context.Context, orderID string, req ScheduleRequest) (*ScheduleResult, error) {
	path := "/orders/" + url.PathEscape(orderID) + "/schedule"
	var resp ScheduleResult
	if err := c.gw.DoJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("schedule order: %w", err)
	}
	if !resp.Status {
		msg := resp.Message
		if msg == "" {
			msg = "scheduling failed"
		}
		return nil, fmt.Errorf("schedule order: %s", msg)
	}
	return &resp, nil
}
