package handler

import (
	"encoding/json"
	"net/http"

	"shipgate/internal/rates"
)

type quoteRequest struct {
	PickupPincode   string  `json:"pickupPincode"`
	DeliveryPincode string  `json:"deliveryPincode"`
	LengthCM        float64 `json:"lengthCm"`
	BreadthCM       float64 `json:"breadthCm"`
	HeightCM        float64 `json:"heightCm"`
	WeightKG        float64 `json:"weightKg"`
	DeclaredValue   float64 `json:"declaredValue"`
	COD             bool    `json:"cod"`
}

// QuoteHandler resolves courier options for a shipment. The billed weight
// is the chargeable weight derived from the actual weight and dimensions.
func QuoteHandler(resolver *rates.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		quotes, err := resolver.Resolve(r.Context(), rates.Input{
			PickupPincode:   req.PickupPincode,
			DeliveryPincode: req.DeliveryPincode,
			WeightKG:        rates.ChargeableWeight(req.WeightKG, req.LengthCM, req.BreadthCM, req.HeightCM),
			DeclaredValue:   req.DeclaredValue,
			COD:             req.COD,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": quotes})
	}
}
