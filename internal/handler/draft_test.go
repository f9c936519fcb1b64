package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shipgate/internal/backend"
	"shipgate/internal/gateway"
	"shipgate/internal/rates"
)

func quoteBackend(t *testing.T, quotes string) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(quotes))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(gateway.New(srv.URL, backend.RefreshPath))
}

func validForm() string {
	return `{
		"orderId": "ORD-1001",
		"firstName": "Asha",
		"phone": "9876543210",
		"addressLine1": "12 MG Road",
		"pinCode": "400001",
		"packageLength": 10,
		"packageBreadth": 10,
		"packageHeight": 10,
		"weightGram": 500,
		"itemName": "Ceramic Mug",
		"units": 2,
		"unitPrice": 250,
		"tax": 18,
		"pickupAddressName": "Warehouse A",
		"pickupPincode": "110001"
	}`
}

func TestDraftWorkspaceResolvesQuotesAfterDebounce(t *testing.T) {
	api := quoteBackend(t, `[{"courier_name":"Delhivery","freight_mode":"Surface","total_Price_GST_Included":95.5}]`)
	ws := NewDraftWorkspace(rates.NewResolver(api), rates.DefaultDebounce)
	defer ws.watcher.Stop()

	rec := httptest.NewRecorder()
	UpdateDraftHandler(ws)(rec, httptest.NewRequest(http.MethodPut, "/api/draft", strings.NewReader(validForm())))
	if rec.Code != http.StatusOK {
		t.Fatalf("update draft: status %d, body %s", rec.Code, rec.Body)
	}

	var body draftBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	// 2 × 250 × 1.18 = 590, courier still unselected.
	if body.TotalOrderValue != 590 {
		t.Errorf("totalOrderValue = %v, want 590", body.TotalOrderValue)
	}
	if len(body.Problems) != 1 || !strings.Contains(body.Problems[0], "delivery service") {
		t.Errorf("problems = %v, want only the courier selection", body.Problems)
	}

	// Quotes are empty until the debounce fires.
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec = httptest.NewRecorder()
		DraftQuotesHandler(ws)(rec, httptest.NewRequest(http.MethodGet, "/api/draft/quotes", nil))
		var qb draftQuotesBody
		if err := json.NewDecoder(rec.Body).Decode(&qb); err != nil {
			t.Fatal(err)
		}
		if len(qb.Quotes) == 1 {
			if qb.Quotes[0].CourierName != "Delhivery" {
				t.Errorf("quote = %+v", qb.Quotes[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("quotes never resolved")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestSelectQuoteRejectsUnknownQuote(t *testing.T) {
	api := quoteBackend(t, `[]`)
	ws := NewDraftWorkspace(rates.NewResolver(api), rates.DefaultDebounce)
	defer ws.watcher.Stop()

	rec := httptest.NewRecorder()
	SelectQuoteHandler(ws)(rec, httptest.NewRequest(http.MethodPost, "/api/draft/select-quote",
		strings.NewReader(`{"courier_name":"Ghost","freight_mode":"Air","total_Price_GST_Included":10}`)))
	if rec.Code != http.StatusConflict {
		t.Errorf("status %d, want 409", rec.Code)
	}
}

func TestSubmitDraftSafeUnderConcurrentReads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Order created successfully"}`))
	}))
	defer srv.Close()
	api := backend.NewClient(gateway.New(srv.URL, backend.RefreshPath))

	ws := NewDraftWorkspace(rates.NewResolver(api), rates.DefaultDebounce)
	defer ws.watcher.Stop()

	rec := httptest.NewRecorder()
	UpdateDraftHandler(ws)(rec, httptest.NewRequest(http.MethodPut, "/api/draft", strings.NewReader(validForm())))
	if rec.Code != http.StatusOK {
		t.Fatalf("update draft: status %d", rec.Code)
	}
	ws.mu.Lock()
	ws.draft.SelectedCourierName = "Delhivery"
	ws.draft.SelectedFreightMode = "Surface"
	ws.draft.SelectShippingCharges = 95.5
	ws.mu.Unlock()

	// Readers hammer the workspace while the submit is in flight.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			r := httptest.NewRecorder()
			GetDraftHandler(ws)(r, httptest.NewRequest(http.MethodGet, "/api/draft", nil))
			r = httptest.NewRecorder()
			DraftQuotesHandler(ws)(r, httptest.NewRequest(http.MethodGet, "/api/draft/quotes", nil))
		}
	}()

	rec = httptest.NewRecorder()
	SubmitDraftHandler(ws, api)(rec, httptest.NewRequest(http.MethodPost, "/api/draft/submit", nil))
	<-done
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", rec.Code, rec.Body)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.draft.OrderID != "" {
		t.Error("draft not reset after submit")
	}
	if ws.draft.PickupAddressName != "Warehouse A" {
		t.Errorf("pickup selection lost on reset: %q", ws.draft.PickupAddressName)
	}
}

func TestSubmitDraftValidatesFirst(t *testing.T) {
	api := quoteBackend(t, `[]`)
	ws := NewDraftWorkspace(rates.NewResolver(api), rates.DefaultDebounce)
	defer ws.watcher.Stop()

	// Fresh draft: everything is missing.
	rec := httptest.NewRecorder()
	SubmitDraftHandler(ws, api)(rec, httptest.NewRequest(http.MethodPost, "/api/draft/submit", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Errors) == 0 {
		t.Error("validation problems missing from response")
	}
}
