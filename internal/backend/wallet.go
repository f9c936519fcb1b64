package backend

import (
	"context"
	"fmt"
	"net/http"

	"shipgate/internal/model"
)

type walletBalanceResponse struct {
	WalletBalance float64 `json:"wallet_balance"`
}

func (c *Client) WalletBalance(ctx context.Context) (float64, error) {
	var resp walletBalanceResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, "/wallet/balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("fetch wallet balance: %w", err)
	}
	return resp.WalletBalance, nil
}

type walletHistoryResponse struct {
	Transactions []model.WalletTransaction `json:"transactions"`
}

func (c *Client) WalletHistory(ctx context.Context) ([]model.WalletTransaction, error) {
	var resp walletHistoryResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, "/wallet/history", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch wallet history: %w", err)
	}
	return resp.Transactions, nil
}

// RazorOrder is the payment-gateway order created for a wallet recharge.
type RazorOrder struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (c *Client) CreateRazorOrder(ctx context.Context, amount float64, receipt string) (*RazorOrder, error) {
	body := map[string]any{"amount": amount, "receipt": receipt}
	var resp RazorOrder
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/create-razor", body, &resp); err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}
	return &resp, nil
}

// VerifyPaymentRequest carries the payment-gateway callback fields the
// backend verifies before crediting the wallet.
type VerifyPaymentRequest struct {
	OrderID   string  `json:"order_id"`
	PaymentID string  `json:"payment_id"`
	Signature string  `json:"signature"`
	Amount    float64 `json:"amount"`
}

type VerifyPaymentResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	WalletBalance *float64 `json:"wallet_balance"`
}

func (c *Client) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResult, error) {
	var resp VerifyPaymentResult
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/verify-payment", req, &resp); err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "payment verification failed"
		}
		return nil, fmt.Errorf("verify payment: %s", msg)
	}
	return &resp, nil
}
