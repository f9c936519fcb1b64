package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shipgate/internal/draft"
	"shipgate/internal/gateway"
	"shipgate/internal/rates"
	"shipgate/internal/scheduler"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

type errorBody struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Kind    string   `json:"kind,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// writeError maps the error taxonomy onto HTTP responses: validation lists
// render inline, network failures are flagged for a retry affordance, and
// backend messages pass through (rewritten to friendlier text when known).
func writeError(w http.ResponseWriter, err error) {
	var ve *draft.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Message: "validation failed",
			Errors:  ve.Problems,
		})
		return
	}

	switch {
	case errors.Is(err, scheduler.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: err.Error()})
		return
	case errors.Is(err, scheduler.ErrTransitionNotAllowed):
		writeJSON(w, http.StatusConflict, errorBody{Message: err.Error()})
		return
	case errors.Is(err, scheduler.ErrInsufficientBalance):
		writeJSON(w, http.StatusPaymentRequired, errorBody{Message: gateway.Friendly(err)})
		return
	case errors.Is(err, scheduler.ErrNoEligibleOrders),
		errors.Is(err, scheduler.ErrNoQuoteSelected),
		errors.Is(err, scheduler.ErrNoPaymentMethod),
		errors.Is(err, rates.ErrIncomplete),
		errors.Is(err, rates.ErrNoQuotes):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	if gateway.IsNetworkError(err) {
		writeJSON(w, http.StatusBadGateway, errorBody{
			Message: "backend unreachable, please retry",
			Kind:    "network",
		})
		return
	}

	var se *gateway.StatusError
	if errors.As(err, &se) {
		writeJSON(w, se.StatusCode, errorBody{Message: gateway.Friendly(err)})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorBody{Message: gateway.Friendly(err)})
}
