package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"shipgate/internal/draft"
	"shipgate/internal/gateway"
	"shipgate/internal/model"
	"shipgate/internal/rates"
)

// DraftWorkspace is the process-wide add-order draft. Edits land here field
// by field; every edit re-arms the debounced quote watcher, so quotes only
// resolve once the inputs settle. Stale quotes are cleared, selection
// included, before each new resolution.
type DraftWorkspace struct {
	watcher *rates.Watcher

	mu        sync.Mutex
	draft     *draft.Draft
	selection rates.Selection
	quotes    []model.RateQuote
	quoteErr  string
}

func NewDraftWorkspace(resolver *rates.Resolver, debounce time.Duration) *DraftWorkspace {
	ws := &DraftWorkspace{draft: draft.New()}
	ws.watcher = rates.NewWatcher(resolver, debounce, ws.clearQuotes, ws.setQuotes)
	return ws
}

func (ws *DraftWorkspace) clearQuotes() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.quotes = nil
	ws.quoteErr = ""
	ws.selection.Clear()
}

func (ws *DraftWorkspace) setQuotes(quotes []model.RateQuote, err error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err != nil {
		ws.quoteErr = gateway.Friendly(err)
		return
	}
	ws.quotes = quotes
}

type draftBody struct {
	Draft            createOrderForm `json:"draft"`
	VolumetricWeight float64         `json:"volumetricWeight"`
	ChargeableWeight float64         `json:"chargeableWeight"`
	TotalOrderValue  float64         `json:"totalOrderValue"`
	Problems         []string        `json:"problems,omitempty"`
}

func (ws *DraftWorkspace) body() draftBody {
	total, _ := ws.draft.TotalOrderValue().Float64()
	return draftBody{
		Draft:            formFromDraft(ws.draft),
		VolumetricWeight: ws.draft.VolumetricWeight(),
		ChargeableWeight: ws.draft.ChargeableWeight(),
		TotalOrderValue:  total,
		Problems:         ws.draft.Validate(),
	}
}

func formFromDraft(d *draft.Draft) createOrderForm {
	return createOrderForm{
		OrderID:           d.OrderID,
		OrderDate:         d.OrderDate,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Email:             d.Email,
		Phone:             d.Phone,
		AddressLine1:      d.AddressLine1,
		AddressLine2:      d.AddressLine2,
		PinCode:           d.PinCode,
		PackageLength:     d.PackageLength,
		PackageBreadth:    d.PackageBreadth,
		PackageHeight:     d.PackageHeight,
		WeightGram:        d.WeightGrams,
		ItemName:          d.ItemName,
		SKU:               d.SKU,
		Description:       d.Description,
		Units:             d.Units,
		UnitPrice:         d.UnitPrice,
		Tax:               d.Tax,
		HSN:               d.HSN,
		PickupAddressName: d.PickupAddressName,
		PickupPincode:     d.PickupPincode,
		PaymentMethod:     d.PaymentMethod,
		ShippingCharges:   d.ShippingCharges,
		CODCharges:        d.CODCharges,

		SelectShippingCharges: d.SelectShippingCharges,
		SelectedCourierName:   d.SelectedCourierName,
		SelectedFreightMode:   d.SelectedFreightMode,
	}
}

// GetDraftHandler returns the current draft with its derived figures and
// outstanding validation problems.
func GetDraftHandler(ws *DraftWorkspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		body := ws.body()
		ws.mu.Unlock()
		writeJSON(w, http.StatusOK, body)
	}
}

// UpdateDraftHandler replaces the draft from the submitted form state and
// re-arms the quote watcher. The pickup selection survives a form that
// omits it.
func UpdateDraftHandler(ws *DraftWorkspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form createOrderForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ws.mu.Lock()
		d := form.draft()
		if form.PickupAddressName == "" {
			d.PickupAddressName = ws.draft.PickupAddressName
			d.PickupPincode = ws.draft.PickupPincode
		}
		ws.draft = d
		body := ws.body()
		in := d.RateInput()
		ws.mu.Unlock()

		// Background context: the resolution outlives this request.
		ws.watcher.Update(context.Background(), in)

		writeJSON(w, http.StatusOK, body)
	}
}

type draftQuotesBody struct {
	Status   bool              `json:"status"`
	Quotes   []model.RateQuote `json:"quotes"`
	Selected *model.RateQuote  `json:"selected,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// DraftQuotesHandler returns the latest resolved quote list and selection.
func DraftQuotesHandler(ws *DraftWorkspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		body := draftQuotesBody{Status: true, Quotes: ws.quotes, Error: ws.quoteErr}
		if q, ok := ws.selection.Selected(); ok {
			body.Selected = &q
		}
		ws.mu.Unlock()
		writeJSON(w, http.StatusOK, body)
	}
}

// SelectQuoteHandler records the courier choice on the draft. The quote
// must come from the currently resolved list.
func SelectQuoteHandler(ws *DraftWorkspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q model.RateQuote
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ws.mu.Lock()
		defer ws.mu.Unlock()
		found := false
		for _, cur := range ws.quotes {
			if cur.Same(q) {
				found = true
				break
			}
		}
		if !found {
			writeJSON(w, http.StatusConflict, errorBody{Message: "quote is no longer available, please re-check rates"})
			return
		}
		ws.selection.Select(q)
		ws.draft.SelectQuote(q)
		writeJSON(w, http.StatusOK, map[string]any{"status": true})
	}
}

// SubmitDraftHandler validates and posts the draft. On success the draft
// resets (pickup selection retained) and the quote state clears.
// The network call runs against a snapshot so concurrent reads of the
// workspace never observe the draft mid-submit.
func SubmitDraftHandler(ws *DraftWorkspace, b draft.OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.mu.Lock()
		snapshot := *ws.draft
		ws.mu.Unlock()

		msg, err := draft.Submit(r.Context(), b, &snapshot)
		if err != nil {
			writeError(w, err)
			return
		}

		ws.mu.Lock()
		ws.draft.Reset()
		ws.mu.Unlock()

		ws.clearQuotes()
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "message": msg})
	}
}
