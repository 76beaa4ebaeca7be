package core_test

import (
	"errors"
	"testing"

	"inventory-api/internal/core"

	"github.com/shopspring/decimal"
)

func TestRecordSale(t *testing.T) {
	pool, ctx := setupTestDB(t)
	catID := seedCategory(t, ctx, pool, "Books")
	product := seedProduct(t, ctx, pool, "Go Cookbook", "BK-001", "10.00", 5, catID)

	inventory := core.NewInventoryService(pool)
	svc := core.NewSalesService(pool, inventory)

	sale, err := svc.RecordSale(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}
	if !sale.TotalPrice.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("total price = %s, want 30.00", sale.TotalPrice)
	}
	if sale.ProductName != "Go Cookbook" {
		t.Errorf("product name = %q", sale.ProductName)
	}

	if stock := currentStock(t, ctx, pool, product.ID); stock != 2 {
		t.Errorf("stock after sale = %d, want 2", stock)
	}

	count, sum := changeStats(t, ctx, pool, product.ID, true)
	if count != 1 || sum != -3 {
		t.Errorf("ledger: got %d entries summing %d, want 1 entry summing -3", count, sum)
	}
	var reason string
	if err := pool.QueryRow(ctx, `
		SELECT reason FROM inventory_changes
		WHERE product_id = $1 AND reason <> 'Initial stock'
	`, product.ID).Scan(&reason); err != nil {
		t.Fatalf("Failed to read ledger reason: %v", err)
	}
	if reason != core.SaleReason {
		t.Errorf("ledger reason = %q, want %q", reason, core.SaleReason)
	}
}

func TestRecordSale_InsufficientStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	catID := seedCategory(t, ctx, pool, "Books")
	product := seedProduct(t, ctx, pool, "Thin Volume", "BK-002", "5.00", 2, catID)

	svc := core.NewSalesService(pool, core.NewInventoryService(pool))

	_, err := svc.RecordSale(ctx, product.ID, 3)
	var insufficient *core.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("RecordSale error = %v, want *InsufficientStockError", err)
	}

	// No sale row, no stock change, no ledger entry.
	var saleCount int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM sales WHERE product_id = $1", product.ID,
	).Scan(&saleCount); err != nil {
		t.Fatalf("Failed to count sales: %v", err)
	}
	if saleCount != 0 {
		t.Errorf("sale rows after rejected sale = %d, want 0", saleCount)
	}
	if stock := currentStock(t, ctx, pool, product.ID); stock != 2 {
		t.Errorf("stock after rejected sale = %d, want 2", stock)
	}
}

func TestRecordSale_ProductNotFound(t *testing.T) {
	pool, ctx := setupTestDB(t)

	svc := core.NewSalesService(pool, core.NewInventoryService(pool))
	_, err := svc.RecordSale(ctx, 12345, 1)
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("RecordSale error = %v, want *NotFoundError", err)
	}
}

func TestListSales_Filters(t *testing.T) {
	pool, ctx := setupTestDB(t)
	booksID := seedCategory(t, ctx, pool, "Books")
	toysID := seedCategory(t, ctx, pool, "Toys")
	book := seedProduct(t, ctx, pool, "Novel", "BK-010", "12.00", 100, booksID)
	toy := seedProduct(t, ctx, pool, "Blocks", "TY-010", "25.00", 100, toysID)

	seedSale(t, ctx, pool, book.ID, 1, "12.00", "2026-01-10T10:00:00Z")
	seedSale(t, ctx, pool, book.ID, 2, "24.00", "2026-01-20T10:00:00Z")
	seedSale(t, ctx, pool, toy.ID, 1, "25.00", "2026-02-05T10:00:00Z")

	svc := core.NewSalesService(pool, core.NewInventoryService(pool))

	page, err := svc.ListSales(ctx, core.SalesFilter{})
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}
	if page.Pagination.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Pagination.Total)
	}
	// Newest first.
	if page.Sales[0].ProductName != "Blocks" {
		t.Errorf("first sale = %q, want newest (Blocks)", page.Sales[0].ProductName)
	}

	page, err = svc.ListSales(ctx, core.SalesFilter{ProductID: &book.ID})
	if err != nil {
		t.Fatalf("ListSales by product failed: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Errorf("sales for book = %d, want 2", page.Pagination.Total)
	}

	page, err = svc.ListSales(ctx, core.SalesFilter{CategoryID: &toysID})
	if err != nil {
		t.Fatalf("ListSales by category failed: %v", err)
	}
	if page.Pagination.Total != 1 {
		t.Errorf("sales for Toys = %d, want 1", page.Pagination.Total)
	}

	// Inclusive on both bounds.
	page, err = svc.ListSales(ctx, core.SalesFilter{StartDate: "2026-01-20", EndDate: "2026-02-05"})
	if err != nil {
		t.Fatalf("ListSales by date failed: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Errorf("sales in 2026-01-20..2026-02-05 = %d, want 2", page.Pagination.Total)
	}

	page, err = svc.ListSales(ctx, core.SalesFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListSales page 2 failed: %v", err)
	}
	if len(page.Sales) != 1 || page.Pagination.TotalPages != 2 {
		t.Errorf("page 2 of limit 2: got %d sales, %d pages; want 1 sale, 2 pages",
			len(page.Sales), page.Pagination.TotalPages)
	}
}
