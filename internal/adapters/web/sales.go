package web

import (
	"net/http"

	"inventory-api/internal/core"
)

// listSales handles GET /api/v1/sales.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter, err := salesFilterFromQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	page, err := h.sales.ListSales(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writePage(w, page.Sales, page.Pagination)
}

// createSale handles POST /api/v1/sales.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var body saleBody
	if !decodeJSON(w, r, &body) {
		return
	}

	productID, quantity, err := body.validate()
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	sale, err := h.sales.RecordSale(r.Context(), productID, quantity)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeCreated(w, "Sale created successfully", sale)
}

// revenueAnalytics handles GET /api/v1/sales/analytics/revenue.
func (h *Handler) revenueAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bucket, err := core.ParseBucket(q.Get("period"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	start, end, err := dateRangeFromQuery(q)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	report, err := h.analytics.RevenueByPeriod(r.Context(), bucket, start, end)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, report)
}

// categoryAnalytics handles GET /api/v1/sales/analytics/category.
func (h *Handler) categoryAnalytics(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeFromQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	results, err := h.analytics.RevenueByCategory(r.Context(), start, end)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, results)
}

// salesComparison handles GET /api/v1/sales/analytics/comparison.
func (h *Handler) salesComparison(w http.ResponseWriter, r *http.Request) {
	current, previous, err := comparisonFromQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	report, err := h.analytics.ComparePeriods(r.Context(), current, previous)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, report)
}
