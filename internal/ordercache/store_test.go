package ordercache

import (
	"testing"

	"shipgate/internal/model"
)

func TestReplaceAndGet(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Order{
		{OrderID: "A", Status: model.StatusPending},
		{OrderID: "B", Status: model.StatusAccepted},
	})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got, ok := s.Get("B")
	if !ok || got.Status != model.StatusAccepted {
		t.Errorf("Get(B) = %+v, %v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) found an order")
	}

	// A second Replace discards the previous set entirely.
	s.Replace([]model.Order{{OrderID: "C"}})
	if s.Len() != 1 {
		t.Errorf("Len() = %d after replace, want 1", s.Len())
	}
	if _, ok := s.Get("A"); ok {
		t.Error("stale order survived Replace")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Order{{OrderID: "A", Status: model.StatusPending}})

	out := s.All()
	out[0].Status = model.StatusDelivered
	if got, _ := s.Get("A"); got.Status != model.StatusPending {
		t.Error("mutating All()'s result changed the store")
	}
}

func TestSetStatusBatch(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Order{
		{OrderID: "A", Status: model.StatusPending},
		{OrderID: "B", Status: model.StatusPending},
		{OrderID: "C", Status: model.StatusPending},
	})

	s.SetStatus([]string{"A", "C", "ghost"}, model.StatusAccepted)
	if got, _ := s.Get("A"); got.Status != model.StatusAccepted {
		t.Errorf("A status = %s", got.Status)
	}
	if got, _ := s.Get("B"); got.Status != model.StatusPending {
		t.Errorf("B status = %s, want untouched", got.Status)
	}
	if got, _ := s.Get("C"); got.Status != model.StatusAccepted {
		t.Errorf("C status = %s", got.Status)
	}
}

func TestApplyScheduledMerges(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Order{{
		OrderID:   "A",
		Status:    model.StatusAccepted,
		LabelURL:  "https://labels.example.com/old.pdf",
		AWBNumber: "OLD-AWB",
	}})

	// Empty AWB/label in the update must not wipe existing values.
	s.ApplyScheduled(map[string]ScheduledUpdate{
		"A": {
			SelectedCourierName:   "Delhivery",
			SelectedFreightMode:   "Surface",
			SelectShippingCharges: 75,
			PaymentMethod:         model.PaymentPrepaid,
		},
	})
	got, _ := s.Get("A")
	if got.SelectedCourierName != "Delhivery" || got.SelectShippingCharges != 75 {
		t.Errorf("schedule fields not merged: %+v", got)
	}
	if got.AWBNumber != "OLD-AWB" || got.LabelURL != "https://labels.example.com/old.pdf" {
		t.Errorf("empty update fields overwrote existing values: %+v", got)
	}

	s.ApplyScheduled(map[string]ScheduledUpdate{
		"A":     {AWBNumber: "NEW-AWB", LabelURL: "https://labels.example.com/new.pdf"},
		"ghost": {AWBNumber: "X"},
	})
	got, _ = s.Get("A")
	if got.AWBNumber != "NEW-AWB" || got.LabelURL != "https://labels.example.com/new.pdf" {
		t.Errorf("non-empty update fields not applied: %+v", got)
	}
}

func TestSetLabelURL(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Order{{OrderID: "A"}})

	s.SetLabelURL("A", "https://labels.example.com/a.pdf")
	if got, _ := s.Get("A"); got.LabelURL != "https://labels.example.com/a.pdf" {
		t.Errorf("LabelURL = %q", got.LabelURL)
	}
	s.SetLabelURL("ghost", "x")
}
