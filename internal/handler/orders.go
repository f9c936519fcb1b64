package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shipgate/internal/backend"
	"shipgate/internal/draft"
	"shipgate/internal/gateway"
	"shipgate/internal/listing"
	"shipgate/internal/model"
	"shipgate/internal/ordercache"
	"shipgate/internal/scheduler"
)

// createOrderForm mirrors the add-order form fields as submitted by the
// dashboard, weight in grams included.
type createOrderForm struct {
	OrderID           string  `json:"orderId"`
	OrderDate         string  `json:"orderDate"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	AddressLine1      string  `json:"addressLine1"`
	AddressLine2      string  `json:"addressLine2"`
	PinCode           string  `json:"pinCode"`
	PackageLength     float64 `json:"packageLength"`
	PackageBreadth    float64 `json:"packageBreadth"`
	PackageHeight     float64 `json:"packageHeight"`
	WeightGram        float64 `json:"weightGram"`
	ItemName          string  `json:"itemName"`
	SKU               string  `json:"sku"`
	Description       string  `json:"description"`
	Units             int     `json:"units"`
	UnitPrice         float64 `json:"unitPrice"`
	Tax               float64 `json:"tax"`
	HSN               string  `json:"hsn"`
	PickupAddressName string  `json:"pickupAddressName"`
	PickupPincode     string  `json:"pickupPincode"`
	PaymentMethod     string  `json:"paymentMethod"`
	ShippingCharges   float64 `json:"shippingCharges"`
	CODCharges        float64 `json:"codCharges"`

	SelectShippingCharges float64 `json:"selectShippingCharges"`
	SelectedCourierName   string  `json:"selectedCourierName"`
	SelectedFreightMode   string  `json:"selectedFreightMode"`
}

func (f createOrderForm) draft() *draft.Draft {
	d := draft.New()
	d.OrderID = f.OrderID
	if f.OrderDate != "" {
		d.OrderDate = f.OrderDate
	}
	d.FirstName = f.FirstName
	d.LastName = f.LastName
	d.Email = f.Email
	d.Phone = f.Phone
	d.AddressLine1 = f.AddressLine1
	d.AddressLine2 = f.AddressLine2
	d.PinCode = f.PinCode
	d.PackageLength = f.PackageLength
	d.PackageBreadth = f.PackageBreadth
	d.PackageHeight = f.PackageHeight
	d.WeightGrams = f.WeightGram
	d.ItemName = f.ItemName
	d.SKU = f.SKU
	d.Description = f.Description
	d.Units = f.Units
	d.UnitPrice = f.UnitPrice
	d.Tax = f.Tax
	d.HSN = f.HSN
	d.PickupAddressName = f.PickupAddressName
	d.PickupPincode = f.PickupPincode
	if f.PaymentMethod != "" {
		d.PaymentMethod = f.PaymentMethod
	}
	d.ShippingCharges = f.ShippingCharges
	d.CODCharges = f.CODCharges
	d.SelectShippingCharges = f.SelectShippingCharges
	d.SelectedCourierName = f.SelectedCourierName
	d.SelectedFreightMode = f.SelectedFreightMode
	return d
}

func CreateOrderHandler(b *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form createOrderForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		msg, err := draft.Submit(r.Context(), b, form.draft())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "message": msg})
	}
}

// OrderFetcher is one backend listing call (user-orders or all-orders).
type OrderFetcher func(ctx context.Context) ([]model.Order, error)

func filtersFromQuery(r *http.Request) listing.Filters {
	q := r.URL.Query()
	return listing.Filters{
		Search:        q.Get("search"),
		Status:        model.OrderStatus(q.Get("status")),
		DateFrom:      q.Get("dateFrom"),
		DateTo:        q.Get("dateTo"),
		PaymentMethod: q.Get("paymentMethod"),
	}
}

// ListOrdersHandler serves a filtered, paginated projection of the cached
// collection. The backend is consulted only on the first request or when
// the caller asks for an explicit refresh; pagination itself never fetches.
func ListOrdersHandler(fetch OrderFetcher, cache *ordercache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("refresh") == "true" || cache.Len() == 0 {
			orders, err := fetch(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			cache.Replace(orders)
		}

		filtered := listing.Apply(cache.All(), filtersFromQuery(r))

		page, _ := strconv.Atoi(q.Get("page"))
		pageSize, _ := strconv.Atoi(q.Get("pageSize"))
		if !listing.ValidPageSize(pageSize) {
			pageSize = listing.DefaultPageSize
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":     true,
			"data":       listing.Paginate(filtered, page, pageSize),
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": len(filtered),
			"totalPages": listing.TotalPages(len(filtered), pageSize),
		})
	}
}

// recentOrderCount is how many latest orders the dashboard card shows.
const recentOrderCount = 3

// OrdersSummaryHandler serves the dashboard stats: per-status counts,
// totals, and the latest orders. Fetch semantics match ListOrdersHandler.
func OrdersSummaryHandler(fetch OrderFetcher, cache *ordercache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("refresh") == "true" || cache.Len() == 0 {
			orders, err := fetch(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			cache.Replace(orders)
		}

		all := cache.All()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       true,
			"summary":      listing.Summarize(all),
			"recentOrders": listing.Recent(all, recentOrderCount),
		})
	}
}

// ExportOrdersHandler downloads the filtered collection as CSV.
func ExportOrdersHandler(cache *ordercache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filtered := listing.Apply(cache.All(), filtersFromQuery(r))

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="my-orders.csv"`)
		if err := listing.WriteCSV(w, filtered); err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
		}
	}
}

type statusUpdateRequest struct {
	Status model.OrderStatus `json:"status"`
}

func UpdateStatusHandler(orch *scheduler.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")

		var req statusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if !req.Status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		if err := orch.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "message": "status updated"})
	}
}

type bulkStatusRequest struct {
	OrderIDs []string          `json:"orderIds"`
	Status   model.OrderStatus `json:"status"`
}

type bulkReportBody struct {
	Status     bool     `json:"status"`
	Requested  int      `json:"requested"`
	Skipped    int      `json:"skipped"`
	Succeeded  []string `json:"succeeded"`
	Failed     int      `json:"failed"`
	FirstError string   `json:"firstError,omitempty"`
}

func BulkStatusHandler(orch *scheduler.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if !req.Status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		report, err := orch.BulkUpdateStatus(r.Context(), req.OrderIDs, req.Status)
		if err != nil {
			writeError(w, err)
			return
		}

		body := bulkReportBody{
			Status:    true,
			Requested: report.Requested,
			Skipped:   report.Skipped,
			Succeeded: report.Succeeded,
			Failed:    report.Failed,
		}
		if report.FirstError != nil {
			body.FirstError = gateway.Friendly(report.FirstError)
		}
		writeJSON(w, http.StatusOK, body)
	}
}

type scheduleRequest struct {
	OrderIDs      []string        `json:"orderIds"`
	Quote         model.RateQuote `json:"quote"`
	PaymentMethod string          `json:"paymentMethod"`
}

func ScheduleHandler(orch *scheduler.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		report, err := orch.Schedule(r.Context(), req.OrderIDs, req.Quote, req.PaymentMethod)
		if err != nil {
			writeError(w, err)
			return
		}

		body := bulkReportBody{
			Status:    true,
			Requested: report.Requested,
			Skipped:   report.Skipped,
			Succeeded: report.Scheduled,
			Failed:    report.Failed,
		}
		if report.FirstError != nil {
			body.FirstError = gateway.Friendly(report.FirstError)
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// LabelHandler streams the label PDF when the chain yields bytes, or hands
// back the hosted URL when that is all the backend has.
func LabelHandler(orch *scheduler.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderID")

		label, err := orch.FetchLabel(r.Context(), orderID)
		if err != nil {
			writeError(w, err)
			return
		}

		if len(label.PDF) > 0 {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="label-`+orderID+`.pdf"`)
			w.Write(label.PDF)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "labelUrl": label.URL})
	}
}
