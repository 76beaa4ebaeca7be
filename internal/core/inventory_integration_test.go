package core_test

import (
	"errors"
	"testing"

	"inventory-api/internal/core"
)

func TestInventoryAdjust_RoundTrip(t *testing.T) {
	pool, ctx := setupTestDB(t)
	catID := seedCategory(t, ctx, pool, "Electronics")
	product := seedProduct(t, ctx, pool, "Keyboard", "KB-001", "49.99", 20, catID)

	svc := core.NewInventoryService(pool)

	adj, err := svc.Adjust(ctx, product.ID, 5, "Restock")
	if err != nil {
		t.Fatalf("Adjust(+5) failed: %v", err)
	}
	if adj.PreviousStock != 20 || adj.NewStock != 25 {
		t.Errorf("Adjust(+5): got %d -> %d, want 20 -> 25", adj.PreviousStock, adj.NewStock)
	}

	adj, err = svc.Adjust(ctx, product.ID, -3, "Damaged units")
	if err != nil {
		t.Fatalf("Adjust(-3) failed: %v", err)
	}
	if adj.PreviousStock != 25 || adj.NewStock != 22 {
		t.Errorf("Adjust(-3): got %d -> %d, want 25 -> 22", adj.PreviousStock, adj.NewStock)
	}

	if stock := currentStock(t, ctx, pool, product.ID); stock != 22 {
		t.Errorf("final stock = %d, want 22", stock)
	}

	// Two adjustments netting +2, with the initial stock entry excluded.
	count, sum := changeStats(t, ctx, pool, product.ID, true)
	if count != 2 || sum != 2 {
		t.Errorf("ledger: got %d entries summing %d, want 2 entries summing 2", count, sum)
	}
}

func TestInventoryAdjust_InsufficientStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	catID := seedCategory(t, ctx, pool, "Electronics")
	product := seedProduct(t, ctx, pool, "Mouse", "MS-001", "19.99", 4, catID)

	svc := core.NewInventoryService(pool)

	_, err := svc.Adjust(ctx, product.ID, -10, "")
	var insufficient *core.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Adjust(-10) error = %v, want *InsufficientStockError", err)
	}
	if insufficient.Available != 4 || insufficient.Requested != 10 {
		t.Errorf("error detail: available %d requested %d, want 4 and 10", insufficient.Available, insufficient.Requested)
	}

	// The rejected adjustment must leave no trace.
	if stock := currentStock(t, ctx, pool, product.ID); stock != 4 {
		t.Errorf("stock after rejected adjustment = %d, want 4", stock)
	}
	if count, _ := changeStats(t, ctx, pool, product.ID, true); count != 0 {
		t.Errorf("ledger entries after rejected adjustment = %d, want 0", count)
	}
}

func TestInventoryAdjust_ProductNotFound(t *testing.T) {
	pool, ctx := setupTestDB(t)

	_, err := core.NewInventoryService(pool).Adjust(ctx, 9999, 5, "")
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Adjust on missing product error = %v, want *NotFoundError", err)
	}
	if notFound.Error() != "Product with ID 9999 not found" {
		t.Errorf("message = %q", notFound.Error())
	}
}

func TestInventoryAdjust_DefaultReason(t *testing.T) {
	pool, ctx := setupTestDB(t)
	catID := seedCategory(t, ctx, pool, "Electronics")
	product := seedProduct(t, ctx, pool, "Monitor", "MN-001", "199.00", 10, catID)

	adj, err := core.NewInventoryService(pool).Adjust(ctx, product.ID, 1, "")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if adj.Reason != core.DefaultAdjustReason {
		t.Errorf("reason = %q, want %q", adj.Reason, core.DefaultAdjustReason)
	}

	var stored string
	err = pool.QueryRow(ctx, `
		SELECT reason FROM inventory_changes
		WHERE product_id = $1 AND reason <> 'Initial stock'
	`, product.ID).Scan(&stored)
	if err != nil {
		t.Fatalf("Failed to read stored reason: %v", err)
	}
	if stored != core.DefaultAdjustReason {
		t.Errorf("stored reason = %q, want %q", stored, core.DefaultAdjustReason)
	}
}
