package listing

import (
	"sort"

	"github.com/shopspring/decimal"

	"shipgate/internal/model"
)

// Summary is the dashboard projection of an order collection: how many
// orders sit in each status, plus headline totals.
type Summary struct {
	TotalOrders  int                       `json:"totalOrders"`
	TotalRevenue float64                   `json:"totalRevenue"`
	StatusCounts map[model.OrderStatus]int `json:"statusCounts"`
}

// Summarize counts orders per status and sums order value. Every known
// status appears in the map, zero-count statuses included, so callers
// never have to check for missing keys.
func Summarize(orders []model.Order) Summary {
	counts := make(map[model.OrderStatus]int, len(model.ValidStatuses))
	for _, s := range model.ValidStatuses {
		counts[s] = 0
	}

	revenue := decimal.Zero
	for _, o := range orders {
		counts[o.Status]++
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalOrderValue))
	}

	return Summary{
		TotalOrders:  len(orders),
		TotalRevenue: revenue.InexactFloat64(),
		StatusCounts: counts,
	}
}

// Recent returns the n most recently placed orders, newest first. Orders
// with unparseable dates sort last; ties keep their incoming order.
func Recent(orders []model.Order, n int) []model.Order {
	out := make([]model.Order, len(orders))
	copy(out, orders)

	sort.SliceStable(out, func(i, j int) bool {
		di, iok := parseDay(out[i].OrderDate)
		dj, jok := parseDay(out[j].OrderDate)
		if iok != jok {
			return iok
		}
		return di.After(dj)
	})

	if n < len(out) {
		out = out[:n]
	}
	return out
}
