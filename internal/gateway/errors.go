package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError means the request never produced an HTTP response. Callers
// surface these with a retry affordance, distinct from backend rejections.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx backend response with its message passed through.
type StatusError struct {
	StatusCode     int
	BackendMessage string
}

func (e *StatusError) Error() string {
	return e.BackendMessage
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// Friendly rewrites the known backend error substrings into actionable text
// for the user. Unknown messages pass through verbatim.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "insufficient wallet balance"):
		return "Insufficient wallet balance. Please recharge and try again."
	case strings.Contains(lower, "courier_code is required"):
		return "Courier selection is missing. Please re-select courier."
	case strings.Contains(lower, "only accepted orders can be scheduled"):
		return "Only accepted orders can be scheduled."
	case strings.Contains(lower, "failed to fetch order info"):
		return "We couldn't fetch order info from the courier aggregator. Please try again shortly."
	case strings.Contains(lower, "failed to assign awb"):
		return "AWB could not be assigned. Please try again later or contact support."
	case strings.Contains(lower, "failed to schedule pickup"):
		return "Pickup scheduling failed. Please try again later."
	}
	return msg
}
