package draft

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"shipgate/internal/backend"
	"shipgate/internal/model"
	"shipgate/internal/rates"
)

var (
	phoneRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
)

// Draft accumulates the add-order form. Derived figures (volumetric weight,
// chargeable weight, total order value) are computed from the current
// fields on every read rather than cached, so they can never go stale.
type Draft struct {
	OrderID   string
	OrderDate string

	FirstName    string
	LastName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	PinCode      string

	// Dimensions in cm, weight in grams as entered.
	PackageLength  float64
	PackageBreadth float64
	PackageHeight  float64
	WeightGrams    float64

	ItemName    string
	SKU         string
	Description string
	Units       int
	UnitPrice   float64
	Tax         float64
	HSN         string

	PickupAddressName string
	PickupPincode     string
	PaymentMethod     string

	ShippingCharges float64
	CODCharges      float64

	SelectShippingCharges float64
	SelectedCourierName   string
	SelectedFreightMode   string
}

// New starts a fresh draft dated today, prepaid by default.
func New() *Draft {
	return &Draft{
		OrderDate:     time.Now().Format("2006-01-02"),
		Units:         1,
		PaymentMethod: model.PaymentPrepaid,
	}
}

func (d *Draft) WeightKG() float64 {
	return d.WeightGrams / 1000
}

func (d *Draft) VolumetricWeight() float64 {
	return rates.VolumetricWeight(d.PackageLength, d.PackageBreadth, d.PackageHeight)
}

func (d *Draft) ChargeableWeight() float64 {
	return rates.ChargeableWeight(d.WeightKG(), d.PackageLength, d.PackageBreadth, d.PackageHeight)
}

// ItemsTotal is Σ(units × unitPrice) × (1 + tax/100), before shipping.
func (d *Draft) ItemsTotal() decimal.Decimal {
	items := decimal.NewFromInt(int64(d.Units)).Mul(decimal.NewFromFloat(d.UnitPrice))
	taxFactor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(d.Tax).Div(decimal.NewFromInt(100)))
	return items.Mul(taxFactor)
}

// TotalOrderValue is the items total plus shipping and, for COD orders, the
// COD charge, rounded to two decimals.
func (d *Draft) TotalOrderValue() decimal.Decimal {
	total := d.ItemsTotal().Add(decimal.NewFromFloat(d.ShippingCharges))
	if d.PaymentMethod == model.PaymentCOD {
		total = total.Add(decimal.NewFromFloat(d.CODCharges))
	}
	return total.Round(2)
}

// RateInput is the rate-resolver question this draft currently poses.
func (d *Draft) RateInput() rates.Input {
	declared, _ := d.ItemsTotal().Round(2).Float64()
	return rates.Input{
		PickupPincode:   d.PickupPincode,
		DeliveryPincode: d.PinCode,
		WeightKG:        d.ChargeableWeight(),
		DeclaredValue:   declared,
		COD:             d.PaymentMethod == model.PaymentCOD,
	}
}

// SelectQuote records the courier the user picked for this draft.
func (d *Draft) SelectQuote(q model.RateQuote) {
	d.SelectShippingCharges = q.TotalPriceGSTIncl
	d.SelectedCourierName = q.CourierName
	d.SelectedFreightMode = q.FreightMode
}

// Validate returns every rule the draft currently violates. Submission is
// permitted only when the list is empty.
func (d *Draft) Validate() []string {
	var errs []string
	if d.OrderID == "" {
		errs = append(errs, "Order number is required")
	}
	if !phoneRe.MatchString(d.Phone) {
		errs = append(errs, "Phone must be 10 digits starting with 6/7/8/9")
	}
	if !pincodeRe.MatchString(d.PinCode) {
		errs = append(errs, "PinCode must be 6 digits")
	}
	if len(d.ItemName) < 3 {
		errs = append(errs, "Item name must be at least 3 characters")
	}
	if d.Units <= 0 {
		errs = append(errs, "Units must be > 0")
	}
	if d.UnitPrice <= 0 {
		errs = append(errs, "Unit price must be > 0")
	}
	if d.PaymentMethod != model.PaymentPrepaid && d.PaymentMethod != model.PaymentCOD {
		errs = append(errs, "Payment method must be PREPAID or COD")
	}
	// Zero-dimension packages are physically meaningless.
	if d.PackageLength <= 0 {
		errs = append(errs, "Package length must be > 0")
	}
	if d.PackageBreadth <= 0 {
		errs = append(errs, "Package breadth must be > 0")
	}
	if d.PackageHeight <= 0 {
		errs = append(errs, "Package height must be > 0")
	}
	if d.WeightGrams <= 0 {
		errs = append(errs, "Weight must be > 0")
	}
	if d.SelectedCourierName == "" {
		errs = append(errs, "Please select a delivery service")
	}
	return errs
}

// Payload builds the create-order request the backend expects.
func (d *Draft) Payload() backend.CreateOrderRequest {
	total, _ := d.TotalOrderValue().Float64()

	var prepaid float64
	if d.PaymentMethod == model.PaymentPrepaid {
		prepaid = total
	}

	return backend.CreateOrderRequest{
		OrderID:           d.OrderID,
		OrderDate:         d.OrderDate,
		PickupAddressName: d.PickupAddressName,
		StoreName:         "DEFAULT",
		BillingIsShipping: true,
		ShippingAddress: model.ShippingAddress{
			FirstName:    d.FirstName,
			LastName:     d.LastName,
			AddressLine1: d.AddressLine1,
			AddressLine2: d.AddressLine2,
			PinCode:      d.PinCode,
			Email:        d.Email,
			Phone:        d.Phone,
		},
		OrderItems: []model.OrderItem{{
			ItemName:    d.ItemName,
			SKU:         d.SKU,
			Description: d.Description,
			Units:       d.Units,
			UnitPrice:   d.UnitPrice,
			Tax:         d.Tax,
			HSN:         d.HSN,
		}},
		PaymentMethod:   d.PaymentMethod,
		ShippingCharges: d.ShippingCharges,
		CODCharges:      d.CODCharges,
		PrepaidAmount:   prepaid,
		TotalOrderValue: total,
		PackageDetails: model.PackageDetails{
			PackageLength:  d.PackageLength,
			PackageBreadth: d.PackageBreadth,
			PackageHeight:  d.PackageHeight,
			PackageWeight:  d.WeightKG(),
		},
		SelectShippingCharges: d.SelectShippingCharges,
		SelectedCourierName:   d.SelectedCourierName,
		SelectedFreightMode:   d.SelectedFreightMode,
	}
}

// Reset clears the mutable fields after a successful submit. The pickup
// address selection survives so repeated entry stays quick.
func (d *Draft) Reset() {
	pickup, pincode := d.PickupAddressName, d.PickupPincode
	*d = *New()
	d.PickupAddressName = pickup
	d.PickupPincode = pincode
}
