package web

import (
	"net/http"
	"strconv"

	"inventory-api/internal/core"

	"github.com/go-chi/chi/v5"
)

// listProducts handles GET /api/v1/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r.URL.Query())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	page, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writePage(w, page.Products, page.Pagination)
}

// createProduct handles POST /api/v1/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body createProductBody
	if !decodeJSON(w, r, &body) {
		return
	}

	input, err := body.validate()
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), input)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeCreated(w, "Product created successfully", product)
}

// updateInventory handles PATCH /api/v1/products/{id}/inventory.
func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeFailure(w, r, &core.ValidationError{
			Message: "Validation failed",
			Details: []core.FieldError{{Field: "id", Message: "ID must be a positive integer", Value: chi.URLParam(r, "id")}},
		})
		return
	}

	var body inventoryUpdateBody
	if !decodeJSON(w, r, &body) {
		return
	}

	changeAmount, reason, err := body.validate()
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	adj, err := h.inventory.Adjust(r.Context(), id, changeAmount, reason)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Inventory updated successfully",
		Data:    adj,
	})
}

// inventoryStatus handles GET /api/v1/products/inventory.
func (h *Handler) inventoryStatus(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	var errs fieldErrors
	if t := parseIntParam(r.URL.Query(), "lowStockThreshold", &errs); t != nil {
		threshold = *t
	}
	if err := errs.toError(); err != nil {
		writeFailure(w, r, err)
		return
	}

	status, err := h.products.InventoryStatus(r.Context(), threshold)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, status)
}
