package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"shipgate/internal/backend"
	"shipgate/internal/model"
	"shipgate/internal/ordercache"
)

// ScheduleReport summarizes a schedule fan-out.
type ScheduleReport struct {
	Requested  int
	Skipped    int
	Scheduled  []string
	Failed     int
	FirstError error
}

// eligibleForSchedule: accepted and not yet carrying a courier.
func eligibleForSchedule(o model.Order) bool {
	return o.Status == model.StatusAccepted && !o.Scheduled()
}

// Schedule commits the selected quote and payment method for a set of
// orders. Guards, in order: a quote must be selected, a payment method must
// be chosen, and for prepaid the cached wallet balance must cover
// price × eligible count — an insufficient balance short-circuits before
// any backend call. Each eligible order is scheduled independently;
// successes are merged into the cache in one batch, and any inline wallet
// balance in a response updates the cache immediately. A prepaid run that
// succeeds without an inline balance ends with a wallet refresh.
func (o *Orchestrator) Schedule(ctx context.Context, orderIDs []string, quote model.RateQuote, paymentMethod string) (*ScheduleReport, error) {
	if quote.CourierName == "" {
		return nil, ErrNoQuoteSelected
	}
	if paymentMethod != model.PaymentPrepaid && paymentMethod != model.PaymentCOD {
		return nil, ErrNoPaymentMethod
	}

	report := &ScheduleReport{Requested: len(orderIDs)}

	var eligible []string
	for _, id := range orderIDs {
		order, ok := o.orders.Get(id)
		if !ok || !eligibleForSchedule(order) {
			report.Skipped++
			continue
		}
		eligible = append(eligible, id)
	}
	if len(eligible) == 0 {
		return report, ErrNoEligibleOrders
	}

	if paymentMethod == model.PaymentPrepaid {
		required := decimal.NewFromFloat(quote.TotalPriceGSTIncl).Mul(decimal.NewFromInt(int64(len(eligible))))
		if !o.wallet.Sufficient(required) {
			return report, fmt.Errorf("%w: required %s, available %s",
				ErrInsufficientBalance, required.StringFixed(2), o.wallet.Balance().StringFixed(2))
		}
	}

	req := backend.ScheduleRequest{
		SelectShippingCharges: quote.TotalPriceGSTIncl,
		SelectedCourierName:   quote.CourierName,
		SelectedFreightMode:   quote.FreightMode,
		PaymentMethod:         paymentMethod,
		CourierCode:           quote.CourierCode,
	}

	var mu sync.Mutex
	updates := make(map[string]ordercache.ScheduledUpdate, len(eligible))
	sawBalance := false

	settled := SettleAll(ctx, eligible, func(ctx context.Context, id string) error {
		result, err := o.backend.ScheduleOrder(ctx, id, req)
		if err != nil {
			return err
		}
		if result.WalletBalance != nil {
			o.wallet.Apply(*result.WalletBalance)
			mu.Lock()
			sawBalance = true
			mu.Unlock()
		}

		u := ordercache.ScheduledUpdate{
			SelectShippingCharges: quote.TotalPriceGSTIncl,
			SelectedCourierName:   quote.CourierName,
			SelectedFreightMode:   quote.FreightMode,
			PaymentMethod:         paymentMethod,
			AWBNumber:             result.AWB,
			LabelURL:              result.LabelURL,
		}
		if result.Order != nil {
			if u.AWBNumber == "" {
				u.AWBNumber = result.Order.AWBNumber
			}
			if u.LabelURL == "" {
				u.LabelURL = result.Order.LabelURL
			}
		}
		mu.Lock()
		updates[id] = u
		mu.Unlock()
		return nil
	})

	if len(settled.Succeeded) > 0 {
		o.orders.ApplyScheduled(updates)

		// A prepaid success debits the wallet server-side. When no
		// response carried the new balance inline, re-fetch it so the
		// cached balance never understates the debit.
		if paymentMethod == model.PaymentPrepaid && !sawBalance {
			if _, err := o.wallet.Refresh(ctx); err != nil {
				slog.Warn("wallet refresh after schedule failed", "error", err)
			}
		}
	}
	report.Scheduled = settled.Succeeded
	report.Failed = len(settled.Failed)
	report.FirstError = settled.FirstError()

	slog.Info("schedule fan-out settled",
		"courier", quote.CourierName,
		"requested", report.Requested,
		"skipped", report.Skipped,
		"scheduled", len(report.Scheduled),
		"failed", report.Failed)
	return report, nil
}
