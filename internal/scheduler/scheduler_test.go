package scheduler

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"shipgate/internal/backend"
	"shipgate/internal/gateway"
	"shipgate/internal/model"
	"shipgate/internal/ordercache"
)

type fakeBackend struct {
	mu            sync.Mutex
	statusCalls   []string
	scheduleCalls []string
	labelCalls    []string

	updateStatus func(orderID string, status model.OrderStatus) error
	schedule     func(orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error)
	label        func(ep backend.LabelEndpoint, orderID string) (*gateway.Response, error)
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	f.mu.Lock()
	f.statusCalls = append(f.statusCalls, orderID)
	f.mu.Unlock()
	if f.updateStatus != nil {
		return f.updateStatus(orderID, status)
	}
	return nil
}

func (f *fakeBackend) ScheduleOrder(ctx context.Context, orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error) {
	f.mu.Lock()
	f.scheduleCalls = append(f.scheduleCalls, orderID)
	f.mu.Unlock()
	if f.schedule != nil {
		return f.schedule(orderID, req)
	}
	return &backend.ScheduleResult{Status: true}, nil
}

func (f *fakeBackend) FetchLabelRaw(ctx context.Context, ep backend.LabelEndpoint, orderID string) (*gateway.Response, error) {
	f.mu.Lock()
	f.labelCalls = append(f.labelCalls, ep.Name)
	f.mu.Unlock()
	if f.label != nil {
		return f.label(ep, orderID)
	}
	return &gateway.Response{StatusCode: 404, Body: []byte(`{"message":"not found"}`)}, nil
}

type fakeWallet struct {
	mu       sync.Mutex
	balance  decimal.Decimal
	applied  []float64
	refreshs int
}

func (f *fakeWallet) Sufficient(required decimal.Decimal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance.GreaterThanOrEqual(required)
}

func (f *fakeWallet) Balance() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

func (f *fakeWallet) Apply(balance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, balance)
	f.balance = decimal.NewFromFloat(balance)
}

func (f *fakeWallet) Refresh(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
	return f.balance, nil
}

func storeWith(orders ...model.Order) *ordercache.Store {
	s := ordercache.NewStore()
	s.Replace(orders)
	return s
}

func quote() model.RateQuote {
	return model.RateQuote{
		CourierName:       "Delhivery",
		CourierCode:       "DL",
		FreightMode:       "Surface",
		TotalPriceGSTIncl: 75,
	}
}

func TestUpdateStatusGuardIssuesNoCall(t *testing.T) {
	b := &fakeBackend{}
	o := New(b, &fakeWallet{}, storeWith(model.Order{
		OrderID:             "A",
		Status:              model.StatusPending,
		SelectedCourierName: "Delhivery",
	}))

	// A scheduled order can no longer be accepted.
	err := o.UpdateStatus(context.Background(), "A", model.StatusAccepted)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("UpdateStatus() error = %v, want ErrTransitionNotAllowed", err)
	}
	if len(b.statusCalls) != 0 {
		t.Errorf("backend called %d times after guard rejection, want 0", len(b.statusCalls))
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	b := &fakeBackend{}
	o := New(b, &fakeWallet{}, storeWith())

	if err := o.UpdateStatus(context.Background(), "missing", model.StatusAccepted); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrOrderNotFound", err)
	}
}

func TestUpdateStatusCommitsToCache(t *testing.T) {
	b := &fakeBackend{}
	store := storeWith(model.Order{OrderID: "A", Status: model.StatusPending})
	o := New(b, &fakeWallet{}, store)

	if err := o.UpdateStatus(context.Background(), "A", model.StatusAccepted); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	got, _ := store.Get("A")
	if got.Status != model.StatusAccepted {
		t.Errorf("cached status = %s, want ACCEPTED", got.Status)
	}
}

func TestBulkUpdateStatusSkipsIneligible(t *testing.T) {
	b := &fakeBackend{}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusPending},
		model.Order{OrderID: "B", Status: model.StatusAccepted},
	)
	o := New(b, &fakeWallet{}, store)

	report, err := o.BulkUpdateStatus(context.Background(), []string{"A", "B"}, model.StatusAccepted)
	if err != nil {
		t.Fatalf("BulkUpdateStatus() error: %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if len(b.statusCalls) != 1 || b.statusCalls[0] != "A" {
		t.Errorf("backend calls = %v, want [A] only", b.statusCalls)
	}
	if len(report.Succeeded) != 1 || report.Succeeded[0] != "A" {
		t.Errorf("Succeeded = %v, want [A]", report.Succeeded)
	}
}

func TestBulkUpdateStatusAllIneligible(t *testing.T) {
	b := &fakeBackend{}
	store := storeWith(model.Order{OrderID: "A", Status: model.StatusDelivered})
	o := New(b, &fakeWallet{}, store)

	report, err := o.BulkUpdateStatus(context.Background(), []string{"A", "ghost"}, model.StatusAccepted)
	if !errors.Is(err, ErrNoEligibleOrders) {
		t.Fatalf("BulkUpdateStatus() error = %v, want ErrNoEligibleOrders", err)
	}
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}
	if len(b.statusCalls) != 0 {
		t.Errorf("backend called %d times, want 0", len(b.statusCalls))
	}
}

func TestBulkUpdateStatusPartialFailure(t *testing.T) {
	wantErr := errors.New("backend exploded")
	b := &fakeBackend{
		updateStatus: func(orderID string, status model.OrderStatus) error {
			if orderID == "B" {
				return wantErr
			}
			return nil
		},
	}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusPending},
		model.Order{OrderID: "B", Status: model.StatusPending},
		model.Order{OrderID: "C", Status: model.StatusPending},
	)
	o := New(b, &fakeWallet{}, store)

	report, err := o.BulkUpdateStatus(context.Background(), []string{"A", "B", "C"}, model.StatusAccepted)
	if err != nil {
		t.Fatalf("BulkUpdateStatus() error: %v", err)
	}
	if len(report.Succeeded) != 2 || report.Failed != 1 {
		t.Errorf("succeeded=%v failed=%d, want 2 and 1", report.Succeeded, report.Failed)
	}
	if !errors.Is(report.FirstError, wantErr) {
		t.Errorf("FirstError = %v, want %v", report.FirstError, wantErr)
	}

	// Successes commit, the failure stays put.
	if got, _ := store.Get("A"); got.Status != model.StatusAccepted {
		t.Errorf("order A status = %s, want ACCEPTED", got.Status)
	}
	if got, _ := store.Get("B"); got.Status != model.StatusPending {
		t.Errorf("order B status = %s, want PENDING", got.Status)
	}
}

func TestScheduleRequiresQuoteAndPayment(t *testing.T) {
	b := &fakeBackend{}
	o := New(b, &fakeWallet{}, storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted}))

	if _, err := o.Schedule(context.Background(), []string{"A"}, model.RateQuote{}, model.PaymentPrepaid); !errors.Is(err, ErrNoQuoteSelected) {
		t.Errorf("missing quote: error = %v, want ErrNoQuoteSelected", err)
	}
	if _, err := o.Schedule(context.Background(), []string{"A"}, quote(), ""); !errors.Is(err, ErrNoPaymentMethod) {
		t.Errorf("missing payment: error = %v, want ErrNoPaymentMethod", err)
	}
	if len(b.scheduleCalls) != 0 {
		t.Errorf("backend called %d times, want 0", len(b.scheduleCalls))
	}
}

func TestScheduleInsufficientBalanceShortCircuits(t *testing.T) {
	b := &fakeBackend{}
	w := &fakeWallet{balance: decimal.NewFromInt(100)}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusAccepted},
		model.Order{OrderID: "B", Status: model.StatusAccepted},
	)
	o := New(b, w, store)

	// 75 × 2 = 150 required against a balance of 100.
	_, err := o.Schedule(context.Background(), []string{"A", "B"}, quote(), model.PaymentPrepaid)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Schedule() error = %v, want ErrInsufficientBalance", err)
	}
	if len(b.scheduleCalls) != 0 {
		t.Errorf("backend called %d times despite insufficient balance, want 0", len(b.scheduleCalls))
	}
}

func TestScheduleCODSkipsBalanceCheck(t *testing.T) {
	b := &fakeBackend{}
	w := &fakeWallet{} // zero balance
	store := storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted})
	o := New(b, w, store)

	report, err := o.Schedule(context.Background(), []string{"A"}, quote(), model.PaymentCOD)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(report.Scheduled) != 1 {
		t.Errorf("Scheduled = %v, want [A]", report.Scheduled)
	}
}

func TestScheduleSkipsAlreadyScheduled(t *testing.T) {
	b := &fakeBackend{}
	w := &fakeWallet{balance: decimal.NewFromInt(1000)}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusAccepted},
		model.Order{OrderID: "B", Status: model.StatusAccepted, SelectedCourierName: "Xpressbees"},
		model.Order{OrderID: "C", Status: model.StatusPending},
	)
	o := New(b, w, store)

	report, err := o.Schedule(context.Background(), []string{"A", "B", "C"}, quote(), model.PaymentPrepaid)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}
	if len(b.scheduleCalls) != 1 || b.scheduleCalls[0] != "A" {
		t.Errorf("backend calls = %v, want [A] only", b.scheduleCalls)
	}
}

func TestScheduleMergesResultAndAppliesBalance(t *testing.T) {
	newBalance := 425.5
	b := &fakeBackend{
		schedule: func(orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error) {
			return &backend.ScheduleResult{
				Status:        true,
				WalletBalance: &newBalance,
				AWB:           "AWB123",
				LabelURL:      "https://labels.example.com/AWB123.pdf",
			}, nil
		},
	}
	w := &fakeWallet{balance: decimal.NewFromInt(1000)}
	store := storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted})
	o := New(b, w, store)

	report, err := o.Schedule(context.Background(), []string{"A"}, quote(), model.PaymentPrepaid)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(report.Scheduled) != 1 {
		t.Fatalf("Scheduled = %v", report.Scheduled)
	}

	got, _ := store.Get("A")
	if got.SelectedCourierName != "Delhivery" || got.AWBNumber != "AWB123" || got.LabelURL == "" {
		t.Errorf("cached order missing schedule results: %+v", got)
	}
	if got.PaymentMethod != model.PaymentPrepaid || got.SelectShippingCharges != 75 {
		t.Errorf("cached order payment fields: %+v", got)
	}
	if len(w.applied) != 1 || w.applied[0] != newBalance {
		t.Errorf("wallet applied = %v, want [%v]", w.applied, newBalance)
	}
	if w.refreshs != 0 {
		t.Errorf("wallet refreshed %d times despite inline balance, want 0", w.refreshs)
	}
}

func TestSchedulePrepaidWithoutInlineBalanceRefreshesWallet(t *testing.T) {
	b := &fakeBackend{
		schedule: func(orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error) {
			return &backend.ScheduleResult{Status: true, AWB: "AWB-" + orderID}, nil
		},
	}
	w := &fakeWallet{balance: decimal.NewFromInt(1000)}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusAccepted},
		model.Order{OrderID: "B", Status: model.StatusAccepted},
	)
	o := New(b, w, store)

	report, err := o.Schedule(context.Background(), []string{"A", "B"}, quote(), model.PaymentPrepaid)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(report.Scheduled) != 2 {
		t.Fatalf("Scheduled = %v", report.Scheduled)
	}
	if len(w.applied) != 0 {
		t.Errorf("wallet applied = %v, want none", w.applied)
	}
	// The debit happened server-side; one refresh covers the whole batch.
	if w.refreshs != 1 {
		t.Errorf("wallet refreshed %d times, want 1", w.refreshs)
	}
}

func TestScheduleCODNeverRefreshesWallet(t *testing.T) {
	b := &fakeBackend{
		schedule: func(orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error) {
			return &backend.ScheduleResult{Status: true}, nil
		},
	}
	w := &fakeWallet{}
	o := New(b, w, storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted}))

	if _, err := o.Schedule(context.Background(), []string{"A"}, quote(), model.PaymentCOD); err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if w.refreshs != 0 {
		t.Errorf("wallet refreshed %d times for COD, want 0", w.refreshs)
	}
}

func TestSchedulePartialFailureCommitsSuccesses(t *testing.T) {
	wantErr := errors.New("courier not serviceable")
	b := &fakeBackend{
		schedule: func(orderID string, req backend.ScheduleRequest) (*backend.ScheduleResult, error) {
			if orderID == "B" {
				return nil, wantErr
			}
			return &backend.ScheduleResult{Status: true, AWB: "AWB-" + orderID}, nil
		},
	}
	w := &fakeWallet{balance: decimal.NewFromInt(1000)}
	store := storeWith(
		model.Order{OrderID: "A", Status: model.StatusAccepted},
		model.Order{OrderID: "B", Status: model.StatusAccepted},
	)
	o := New(b, w, store)

	report, err := o.Schedule(context.Background(), []string{"A", "B"}, quote(), model.PaymentPrepaid)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(report.Scheduled) != 1 || report.Failed != 1 {
		t.Errorf("scheduled=%v failed=%d, want 1 and 1", report.Scheduled, report.Failed)
	}
	if !errors.Is(report.FirstError, wantErr) {
		t.Errorf("FirstError = %v, want %v", report.FirstError, wantErr)
	}

	if got, _ := store.Get("A"); got.AWBNumber != "AWB-A" {
		t.Errorf("successful order not merged: %+v", got)
	}
	if got, _ := store.Get("B"); got.SelectedCourierName != "" {
		t.Errorf("failed order mutated: %+v", got)
	}
}

func TestFetchLabelCachedURLWins(t *testing.T) {
	b := &fakeBackend{}
	store := storeWith(model.Order{
		OrderID:  "A",
		Status:   model.StatusAccepted,
		LabelURL: "https://labels.example.com/a.pdf",
	})
	o := New(b, &fakeWallet{}, store)

	label, err := o.FetchLabel(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchLabel() error: %v", err)
	}
	if label.URL != "https://labels.example.com/a.pdf" {
		t.Errorf("label URL = %q", label.URL)
	}
	if len(b.labelCalls) != 0 {
		t.Errorf("backend called %d times despite cached URL, want 0", len(b.labelCalls))
	}
}

func TestFetchLabelFallsBackToPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	b := &fakeBackend{
		label: func(ep backend.LabelEndpoint, orderID string) (*gateway.Response, error) {
			if ep.Name == "refresh-label" {
				return &gateway.Response{StatusCode: 500, Body: []byte(`{"message":"upstream timeout"}`)}, nil
			}
			return &gateway.Response{StatusCode: 200, ContentType: "application/pdf", Body: pdf}, nil
		},
	}
	o := New(b, &fakeWallet{}, storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted}))

	label, err := o.FetchLabel(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchLabel() error: %v", err)
	}
	if string(label.PDF) != string(pdf) {
		t.Errorf("label PDF = %q", label.PDF)
	}
	if len(b.labelCalls) != 2 || b.labelCalls[0] != "refresh-label" || b.labelCalls[1] != "label" {
		t.Errorf("endpoints walked = %v, want [refresh-label label]", b.labelCalls)
	}
}

func TestFetchLabelURLPayloadIsCached(t *testing.T) {
	b := &fakeBackend{
		label: func(ep backend.LabelEndpoint, orderID string) (*gateway.Response, error) {
			return &gateway.Response{
				StatusCode:  200,
				ContentType: "application/json",
				Body:        []byte(`{"labelUrl":"https://labels.example.com/fresh.pdf"}`),
			}, nil
		},
	}
	store := storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted})
	o := New(b, &fakeWallet{}, store)

	label, err := o.FetchLabel(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchLabel() error: %v", err)
	}
	if label.URL != "https://labels.example.com/fresh.pdf" {
		t.Errorf("label URL = %q", label.URL)
	}
	if got, _ := store.Get("A"); got.LabelURL != label.URL {
		t.Errorf("discovered URL not cached: %q", got.LabelURL)
	}
}

func TestFetchLabelDecodesBase64(t *testing.T) {
	pdf := []byte("%PDF-1.4 encoded")
	b := &fakeBackend{
		label: func(ep backend.LabelEndpoint, orderID string) (*gateway.Response, error) {
			return &gateway.Response{
				StatusCode:  200,
				ContentType: "application/json",
				Body:        []byte(`{"pdfBase64":"` + base64.StdEncoding.EncodeToString(pdf) + `"}`),
			}, nil
		},
	}
	o := New(b, &fakeWallet{}, storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted}))

	label, err := o.FetchLabel(context.Background(), "A")
	if err != nil {
		t.Fatalf("FetchLabel() error: %v", err)
	}
	if string(label.PDF) != string(pdf) {
		t.Errorf("decoded PDF = %q", label.PDF)
	}
}

func TestFetchLabelAllEndpointsFail(t *testing.T) {
	b := &fakeBackend{
		label: func(ep backend.LabelEndpoint, orderID string) (*gateway.Response, error) {
			return &gateway.Response{StatusCode: 502, Body: []byte(`{"message":"courier api down"}`)}, nil
		},
	}
	o := New(b, &fakeWallet{}, storeWith(model.Order{OrderID: "A", Status: model.StatusAccepted}))

	_, err := o.FetchLabel(context.Background(), "A")
	if err == nil {
		t.Fatal("FetchLabel() succeeded with every endpoint failing")
	}
	if len(b.labelCalls) != 3 {
		t.Errorf("endpoints walked = %v, want all 3", b.labelCalls)
	}
}

func TestSettleAllNeverShortCircuits(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}
	settled := SettleAll(context.Background(), []int{1, 2, 3, 4}, func(ctx context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		if n%2 == 0 {
			return errors.New("even failure")
		}
		return nil
	})

	if len(seen) != 4 {
		t.Errorf("fn ran for %d items, want 4", len(seen))
	}
	if len(settled.Succeeded) != 2 || len(settled.Failed) != 2 {
		t.Errorf("succeeded=%v failed=%d", settled.Succeeded, len(settled.Failed))
	}
	// Partitions preserve input order.
	if settled.Succeeded[0] != 1 || settled.Succeeded[1] != 3 {
		t.Errorf("Succeeded = %v, want [1 3]", settled.Succeeded)
	}
	if settled.Failed[0].Item != 2 {
		t.Errorf("first failure = %v, want item 2", settled.Failed[0])
	}
	if settled.FirstError() == nil {
		t.Error("FirstError() = nil")
	}
}
