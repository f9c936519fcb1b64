package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"shipgate/internal/backend"
	"shipgate/internal/gateway"
	"shipgate/internal/model"
	"shipgate/internal/ordercache"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrNoEligibleOrders     = errors.New("no eligible orders selected")
	ErrNoQuoteSelected      = errors.New("please select courier service first")
	ErrNoPaymentMethod      = errors.New("please select payment method")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
)

// Backend is the slice of the aggregator API the orchestrator drives.
type Backend interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	ScheduleOrder(ctx context.Context, orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error)
	FetchLabelRaw(ctx context.Context, ep backend.LabelEndpoint, orderID string) (*gateway.Response, error)
}

// Wallet is the cached balance the orchestrator consults before any
// prepaid schedule. The backend re-validates; this only fails fast.
type Wallet interface {
	Sufficient(required decimal.Decimal) bool
	Balance() decimal.Decimal
	Apply(balance float64)
	Refresh(ctx context.Context) (decimal.Decimal, error)
}

// Orchestrator moves orders through the scheduling state machine. Guards
// run against the in-memory collection so a forbidden transition never
// produces a backend call.
type Orchestrator struct {
	backend Backend
	wallet  Wallet
	orders  *ordercache.Store
}

func New(b Backend, w Wallet, orders *ordercache.Store) *Orchestrator {
	return &Orchestrator{backend: b, wallet: w, orders: orders}
}

// UpdateStatus applies one transition to one order. The transition table is
// checked locally first; a guard rejection issues zero backend calls.
func (o *Orchestrator) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	order, ok := o.orders.Get(orderID)
	if !ok {
		return ErrOrderNotFound
	}
	if !model.CanTransition(order, status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, status)
	}
	if err := o.backend.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}
	o.orders.SetStatus([]string{orderID}, status)
	return nil
}

// BulkReport summarizes a bulk transition: how many of the requested orders
// were silently skipped by the guard, which succeeded, and the first error
// among the failures.
type BulkReport struct {
	Requested  int
	Skipped    int
	Succeeded  []string
	Failed     int
	FirstError error
}

// BulkUpdateStatus applies one transition to a set of orders. Ineligible
// members are excluded from the fan-out entirely; the rest are issued as
// independent concurrent requests that settle without short-circuiting.
// All successful changes land in the cache as one batch.
func (o *Orchestrator) BulkUpdateStatus(ctx context.Context, orderIDs []string, status model.OrderStatus) (*BulkReport, error) {
	report := &BulkReport{Requested: len(orderIDs)}

	var eligible []string
	for _, id := range orderIDs {
		order, ok := o.orders.Get(id)
		if !ok || !model.CanTransition(order, status) {
			report.Skipped++
			continue
		}
		eligible = append(eligible, id)
	}
	if len(eligible) == 0 {
		return report, ErrNoEligibleOrders
	}

	settled := SettleAll(ctx, eligible, func(ctx context.Context, id string) error {
		return o.backend.UpdateOrderStatus(ctx, id, status)
	})

	if len(settled.Succeeded) > 0 {
		o.orders.SetStatus(settled.Succeeded, status)
	}
	report.Succeeded = settled.Succeeded
	report.Failed = len(settled.Failed)
	report.FirstError = settled.FirstError()

	slog.Info("bulk status update settled",
		"status", status,
		"requested", report.Requested,
		"skipped", report.Skipped,
		"succeeded", len(report.Succeeded),
		"failed", report.Failed)
	return report, nil
}
