package model

// PaymentMethod values accepted by the backend.
const (
	PaymentPrepaid = "PREPAID"
	PaymentCOD     = "COD"
)

type ShippingAddress struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	PinCode      string `json:"pinCode"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// PackageDetails holds dimensions in centimeters and weight in kilograms.
type PackageDetails struct {
	PackageLength  float64 `json:"packageLength"`
	PackageBreadth float64 `json:"packageBreadth"`
	PackageHeight  float64 `json:"packageHeight"`
	PackageWeight  float64 `json:"packageWeight"`
}

type OrderItem struct {
	ItemName    string  `json:"itemName"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Units       int     `json:"units"`
	UnitPrice   float64 `json:"unitPrice"`
	Tax         float64 `json:"tax"`
	HSN         string  `json:"hsn"`
}

type Order struct {
	OrderID               string          `json:"orderId"`
	OrderDate             string          `json:"orderDate"`
	PickupAddressName     string          `json:"pickupAddressName"`
	ShippingAddress       ShippingAddress `json:"shippingAddress"`
	PackageDetails        PackageDetails  `json:"packageDetails"`
	OrderItems            []OrderItem     `json:"orderItems"`
	PaymentMethod         string          `json:"paymentMethod"`
	ShippingCharges       float64         `json:"shippingCharges"`
	CODCharges            float64         `json:"codCharges"`
	TotalOrderValue       float64         `json:"totalOrderValue"`
	Status                OrderStatus     `json:"status"`
	SelectShippingCharges float64         `json:"selectShippingCharges,omitempty"`
	SelectedCourierName   string          `json:"selectedCourierName,omitempty"`
	SelectedFreightMode   string          `json:"selectedFreightMode,omitempty"`
	AWBNumber             string          `json:"awbNumber,omitempty"`
	LabelURL              string          `json:"labelUrl,omitempty"`
}

// Scheduled reports whether a courier has been assigned. A scheduled order
// may not be approved, rejected or re-scheduled.
func (o Order) Scheduled() bool {
	return o.SelectedCourierName != ""
}
