package model

// WalletTransaction is one entry of the backend's wallet history.
type WalletTransaction struct {
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	PaymentID string  `json:"payment_id"`
}
