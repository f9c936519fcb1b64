package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"

	"shipgate/internal/backend"
	"shipgate/internal/model"
)

var pincodeRe = regexp.MustCompile(`^\d{6}$`)

var (
	ErrIncomplete = errors.New("rate inputs incomplete")
	ErrNoQuotes   = errors.New("no courier options available")
)

// VolumetricWeight is the dimensional-weight approximation in kilograms for
// a package measured in centimeters.
func VolumetricWeight(lengthCM, breadthCM, heightCM float64) float64 {
	return lengthCM * breadthCM * heightCM / 5000
}

// ChargeableWeight is what couriers actually bill: the greater of the
// package's physical and volumetric weight.
func ChargeableWeight(actualKG, lengthCM, breadthCM, heightCM float64) float64 {
	return math.Max(actualKG, VolumetricWeight(lengthCM, breadthCM, heightCM))
}

// Input is one complete rate question. DeclaredValue is the order value the
// courier insures against; WeightKG is the chargeable weight.
type Input struct {
	PickupPincode   string
	DeliveryPincode string
	WeightKG        float64
	DeclaredValue   float64
	COD             bool
}

// Ready reports whether every constituent is present and both pincodes are
// exactly six digits. The resolver must not fire until Ready holds.
func (in Input) Ready() bool {
	return pincodeRe.MatchString(in.PickupPincode) &&
		pincodeRe.MatchString(in.DeliveryPincode) &&
		in.WeightKG > 0 &&
		in.DeclaredValue > 0
}

// RateFetcher is the backend call the resolver depends on.
type RateFetcher interface {
	Rates(ctx context.Context, req backend.RateRequest) ([]model.RateQuote, error)
}

type Resolver struct {
	backend RateFetcher
}

func NewResolver(b RateFetcher) *Resolver {
	return &Resolver{backend: b}
}

// Resolve requests courier options for in. The backend's ranking is
// preserved; an empty list is surfaced as an error rather than silently
// shown as "no quotes".
func (r *Resolver) Resolve(ctx context.Context, in Input) ([]model.RateQuote, error) {
	if !in.Ready() {
		return nil, ErrIncomplete
	}
	quotes, err := r.backend.Rates(ctx, backend.RateRequest{
		PickupPincode:   in.PickupPincode,
		DeliveryPincode: in.DeliveryPincode,
		COD:             in.COD,
		TotalOrderValue: int(math.Round(in.DeclaredValue)),
		Weight:          in.WeightKG,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve rates: %w", err)
	}
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	return quotes, nil
}
