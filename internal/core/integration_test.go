package core_test

import (
	"context"
	"os"
	"testing"

	"inventory-api/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// setupTestDB connects to the dedicated test database, applies the schema,
// and truncates all tables. Set TEST_DATABASE_URL in your .env or
// environment to run integration tests.
func setupTestDB(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema file: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := pool.Exec(ctx,
		"TRUNCATE TABLE sales, inventory_changes, products, categories RESTART IDENTITY CASCADE",
	); err != nil {
		t.Fatalf("Failed to truncate test database: %v", err)
	}

	return pool, ctx
}

// seedCategory inserts a category and returns its id.
func seedCategory(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", name,
	).Scan(&id); err != nil {
		t.Fatalf("Failed to seed category %q: %v", name, err)
	}
	return id
}

// seedProduct creates a product through ProductService so the initial
// stock ledger entry is written too.
func seedProduct(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name, sku, price string, stock int, categoryID int64) *core.Product {
	t.Helper()
	p, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("Bad price literal %q: %v", price, err)
	}
	product, err := core.NewProductService(pool).CreateProduct(ctx, core.CreateProductInput{
		Name:       name,
		Price:      p,
		SKU:        sku,
		Stock:      stock,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("Failed to seed product %q: %v", sku, err)
	}
	return product
}

// seedSale inserts a sale row directly with an explicit sold_at, bypassing
// the stock decrement. Used by analytics tests that need historical dates.
func seedSale(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID int64, quantity int, totalPrice, soldAt string) {
	t.Helper()
	if _, err := pool.Exec(ctx, `
		INSERT INTO sales (product_id, quantity, total_price, sold_at)
		VALUES ($1, $2, $3, $4::timestamptz)
	`, productID, quantity, totalPrice, soldAt); err != nil {
		t.Fatalf("Failed to seed sale: %v", err)
	}
}

// currentStock reads products.stock directly.
func currentStock(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID int64) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(ctx,
		"SELECT stock FROM products WHERE id = $1", productID,
	).Scan(&stock); err != nil {
		t.Fatalf("Failed to read stock for product %d: %v", productID, err)
	}
	return stock
}

// changeStats returns the count and signed sum of inventory_changes rows
// for a product, optionally excluding the initial stock entry.
func changeStats(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID int64, excludeInitial bool) (count, sum int) {
	t.Helper()
	q := `
		SELECT COUNT(*), COALESCE(SUM(change_amount), 0)
		FROM inventory_changes
		WHERE product_id = $1`
	if excludeInitial {
		q += " AND reason <> 'Initial stock'"
	}
	if err := pool.QueryRow(ctx, q, productID).Scan(&count, &sum); err != nil {
		t.Fatalf("Failed to read inventory changes for product %d: %v", productID, err)
	}
	return count, sum
}
