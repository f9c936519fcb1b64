package model

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusRejected  OrderStatus = "REJECTED"
	StatusOnWay     OrderStatus = "ON_WAY"
	StatusRTO       OrderStatus = "RTO"
	StatusDelivered OrderStatus = "DELIVERED"
)

// ValidStatuses lists every status the backend recognizes, in lifecycle order.
var ValidStatuses = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusOnWay,
	StatusRTO,
	StatusDelivered,
}

func (s OrderStatus) Valid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses an order may be moved to by a
// client-issued status update. Courier assignment is part of the state:
// a PENDING order that already carries a courier may not change status, and
// an ACCEPTED order only moves forward once a courier is assigned.
// REJECTED, RTO and DELIVERED are terminal.
func AllowedTransitions(o Order) []OrderStatus {
	switch o.Status {
	case StatusPending:
		if o.Scheduled() {
			return nil
		}
		return []OrderStatus{StatusAccepted, StatusRejected}
	case StatusAccepted:
		if o.Scheduled() {
			return []OrderStatus{StatusOnWay, StatusRTO}
		}
		return nil
	case StatusOnWay:
		return []OrderStatus{StatusDelivered}
	default:
		return nil
	}
}

// CanTransition reports whether moving o to the target status is permitted
// without consulting the backend.
func CanTransition(o Order, to OrderStatus) bool {
	for _, s := range AllowedTransitions(o) {
		if s == to {
			return true
		}
	}
	return false
}
