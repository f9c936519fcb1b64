package model

// RateQuote is one courier/freight-mode option returned by a rate request.
// Quotes are ephemeral: they live in the caller's state until selection or
// discard and are never persisted by this layer. Field names mirror the
// backend response exactly.
type RateQuote struct {
	CourierName          string  `json:"courier_name"`
	CourierCode          string  `json:"courier_code"`
	FreightMode          string  `json:"freight_mode"`
	TotalFreight         float64 `json:"total_freight"`
	GST                  float64 `json:"GST"`
	TotalPriceGSTIncl    float64 `json:"total_Price_GST_Included"`
	CutoffTime           string  `json:"cutoff_time"`
}

// Same reports whether two quotes denote the same courier option. A quote is
// identified by courier, freight mode and the GST-inclusive price together.
func (q RateQuote) Same(other RateQuote) bool {
	return q.CourierName == other.CourierName &&
		q.FreightMode == other.FreightMode &&
		q.TotalPriceGSTIncl == other.TotalPriceGSTIncl
}
