package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"shipgate/internal/backend"
	"shipgate/internal/wallet"
)

func WalletBalanceHandler(wallets *wallet.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := wallets.Refresh(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		bal, _ := balance.Float64()
		writeJSON(w, http.StatusOK, map[string]any{"wallet_balance": bal})
	}
}

func WalletHistoryHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactions, err := b.WalletHistory(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
	}
}

type rechargeRequest struct {
	Amount float64 `json:"amount"`
}

// RechargeHandler opens a payment-gateway order for a wallet top-up.
func RechargeHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rechargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Amount <= 0 {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		order, err := b.CreateRazorOrder(r.Context(), req.Amount, uuid.NewString())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// VerifyPaymentHandler completes a recharge. The wallet cache picks up the
// inline balance when the backend includes one, otherwise it re-fetches.
func VerifyPaymentHandler(b *backend.Client, wallets *wallet.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.VerifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		result, err := b.VerifyPayment(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}

		if result.WalletBalance != nil {
			wallets.Apply(*result.WalletBalance)
		} else if _, err := wallets.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}

		bal, _ := wallets.Balance().Float64()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "wallet_balance": bal})
	}
}
