package web

import (
	"net/http"

	"inventory-api/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the core services and the chi router.
type Handler struct {
	products  core.ProductService
	inventory core.InventoryService
	sales     core.SalesService
	analytics core.AnalyticsService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(
	products core.ProductService,
	inventory core.InventoryService,
	sales core.SalesService,
	analytics core.AnalyticsService,
	allowedOrigins string,
) http.Handler {
	h := &Handler{
		products:  products,
		inventory: inventory,
		sales:     sales,
		analytics: analytics,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		// Mutating endpoints: 1 MB body limit to prevent unbounded request abuse.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB
			r.Post("/products", h.createProduct)
			r.Patch("/products/{id}/inventory", h.updateInventory)
			r.Post("/sales", h.createSale)
		})

		r.Get("/products", h.listProducts)
		r.Get("/products/inventory", h.inventoryStatus)
		r.Get("/sales", h.listSales)
		r.Get("/sales/analytics/revenue", h.revenueAnalytics)
		r.Get("/sales/analytics/category", h.categoryAnalytics)
		r.Get("/sales/analytics/comparison", h.salesComparison)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeData(w, response{Status: "ok"})
}
