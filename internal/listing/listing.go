package listing

import (
	"strings"
	"time"

	"shipgate/internal/model"
)

// Filters narrow the in-memory order collection. All populated filters must
// match (conjunctive); zero values match everything.
type Filters struct {
	// Search matches case-insensitively as a substring of the order ID,
	// status, or first item name.
	Search        string
	Status        model.OrderStatus
	DateFrom      string // inclusive, YYYY-MM-DD
	DateTo        string // inclusive, YYYY-MM-DD
	PaymentMethod string
}

func (f Filters) Match(o model.Order) bool {
	if f.Search != "" && !matchesSearch(o, f.Search) {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.DateFrom != "" {
		from, ok := parseDay(f.DateFrom)
		day, dok := parseDay(o.OrderDate)
		if ok && (!dok || day.Before(from)) {
			return false
		}
	}
	if f.DateTo != "" {
		to, ok := parseDay(f.DateTo)
		day, dok := parseDay(o.OrderDate)
		if ok && (!dok || day.After(to)) {
			return false
		}
	}
	// Payment method only means anything once a courier is assigned;
	// unscheduled orders show as PENDING and never match this filter.
	if f.PaymentMethod != "" && (!o.Scheduled() || o.PaymentMethod != f.PaymentMethod) {
		return false
	}
	return true
}

func matchesSearch(o model.Order, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(o.OrderID), term) {
		return true
	}
	if strings.Contains(strings.ToLower(string(o.Status)), term) {
		return true
	}
	if len(o.OrderItems) > 0 && strings.Contains(strings.ToLower(o.OrderItems[0].ItemName), term) {
		return true
	}
	return false
}

func parseDay(s string) (time.Time, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Apply filters the collection, preserving its order.
func Apply(orders []model.Order, f Filters) []model.Order {
	var out []model.Order
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}
