package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"shipgate/internal/backend"
)

var (
	mobileRe     = regexp.MustCompile(`^[6-9]\d{9}$`)
	pinRe        = regexp.MustCompile(`^\d{6}$`)
	looseEmailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

func PickupAddressesHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addresses, err := b.PickupAddresses(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": addresses})
	}
}

func validatePickupLocation(loc backend.PickupLocation) []string {
	var errs []string
	if len(strings.TrimSpace(loc.AddressName)) < 2 {
		errs = append(errs, "Company/Business name required")
	}
	if len(strings.TrimSpace(loc.ContactName)) < 2 {
		errs = append(errs, "Contact person name required")
	}
	if !mobileRe.MatchString(loc.ContactNumber) {
		errs = append(errs, "Contact number must be 10 digits starting with 6/7/8/9")
	}
	if loc.Email != "" && !looseEmailRe.MatchString(loc.Email) {
		errs = append(errs, "Email looks invalid")
	}
	if len(strings.TrimSpace(loc.AddressLine)) < 5 {
		errs = append(errs, "Address line 1 required (min 5 chars)")
	}
	if len(strings.TrimSpace(loc.City)) < 2 {
		errs = append(errs, "City is required")
	}
	if !pinRe.MatchString(loc.Pincode) {
		errs = append(errs, "Pincode must be 6 digits")
	}

	if loc.UseAltRTOAddress {
		r := loc.CreateRTOAddress
		if len(strings.TrimSpace(r.AddressName)) < 2 {
			errs = append(errs, "RTO: company name required")
		}
		if len(strings.TrimSpace(r.ContactName)) < 2 {
			errs = append(errs, "RTO: contact name required")
		}
		if !mobileRe.MatchString(r.ContactNumber) {
			errs = append(errs, "RTO: contact number invalid")
		}
		if len(r.AddressLine) < 5 {
			errs = append(errs, "RTO: address line 1 required")
		}
		if len(strings.TrimSpace(r.City)) < 2 {
			errs = append(errs, "RTO: city required")
		}
		if !pinRe.MatchString(r.Pincode) {
			errs = append(errs, "RTO: pincode must be 6 digits")
		}
	}
	return errs
}

// CreatePickupLocationHandler registers a new pickup location with the
// backend. The RTO block is validated only when the alternate RTO address
// is in use.
func CreatePickupLocationHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loc backend.PickupLocation
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if problems := validatePickupLocation(loc); len(problems) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Message: "validation failed",
				Errors:  problems,
			})
			return
		}

		msg, err := b.CreatePickupLocation(r.Context(), loc)
		if err != nil {
			writeError(w, err)
			return
		}
		if msg == "" {
			msg = "Pickup address created successfully"
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "message": msg})
	}
}

func PickupPincodeHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addressName := r.URL.Query().Get("addressName")
		if addressName == "" {
			http.Error(w, "addressName required", http.StatusBadRequest)
			return
		}

		pincode, err := b.PickupPincode(r.Context(), addressName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"data":   map[string]string{"pincode": pincode},
		})
	}
}
