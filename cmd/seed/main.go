package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/core"
	"inventory-api/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name        string
	description string
	price       string
	sku         string
	stock       int
	category    string
}

var categories = []string{
	"Electronics",
	"Clothing & Accessories",
	"Home & Garden",
	"Sports & Outdoors",
	"Books & Media",
	"Health & Beauty",
	"Toys & Games",
	"Automotive",
	"Grocery & Food",
	"Office Supplies",
}

var products = []seedProduct{
	{"iPhone 15 Pro Max", "Latest Apple iPhone with advanced camera system and A17 Pro chip", "1199.99", "IPHONE-15-PRO-MAX", 50, "Electronics"},
	{"Samsung 65\" 4K Smart TV", "Ultra HD Smart TV with HDR and built-in streaming apps", "899.99", "SAMSUNG-TV-65-4K", 25, "Electronics"},
	{"MacBook Air M2", "Apple MacBook Air with M2 chip, 13-inch display", "1299.99", "MACBOOK-AIR-M2", 30, "Electronics"},
	{"Sony WH-1000XM5 Headphones", "Wireless noise-canceling headphones with premium sound", "399.99", "SONY-WH1000XM5", 75, "Electronics"},
	{"Nintendo Switch OLED", "Gaming console with vibrant OLED screen", "349.99", "NINTENDO-SWITCH-OLED", 40, "Electronics"},
	{"Levi's 501 Original Jeans", "Classic straight-leg jeans in various sizes", "89.99", "LEVIS-501-JEANS", 120, "Clothing & Accessories"},
	{"Nike Air Max 270", "Comfortable running shoes with Air Max technology", "149.99", "NIKE-AIRMAX-270", 85, "Clothing & Accessories"},
	{"Ray-Ban Aviator Sunglasses", "Classic aviator sunglasses with UV protection", "179.99", "RAYBAN-AVIATOR", 60, "Clothing & Accessories"},
	{"Dyson V15 Detect Vacuum", "Cordless vacuum with laser dust detection", "749.99", "DYSON-V15-DETECT", 35, "Home & Garden"},
	{"KitchenAid Stand Mixer", "Professional 5-quart stand mixer for baking", "449.99", "KITCHENAID-MIXER-5QT", 28, "Home & Garden"},
	{"Yeti Rambler Tumbler", "Insulated stainless steel tumbler, 30 oz", "39.99", "YETI-RAMBLER-30OZ", 200, "Sports & Outdoors"},
	{"Atomic Habits", "Bestselling book on building good habits", "16.99", "BOOK-ATOMIC-HABITS", 150, "Books & Media"},
	{"LEGO Millennium Falcon", "Star Wars collector building set", "169.99", "LEGO-FALCON-75257", 45, "Toys & Games"},
	{"Moleskine Classic Notebook", "Hardcover dotted notebook, large", "24.99", "MOLESKINE-CLASSIC-L", 90, "Office Supplies"},
}

// Populates the database with sample categories, products (each with its
// initial stock ledger entry), and randomized sales over the past 90 days.
// Destructive: clears all existing rows first.
func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seeding complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx,
		"TRUNCATE TABLE sales, inventory_changes, products, categories RESTART IDENTITY CASCADE",
	); err != nil {
		return fmt.Errorf("failed to clear existing data: %w", err)
	}

	categoryIDs := make(map[string]int64, len(categories))
	for _, name := range categories {
		var id int64
		if err := pool.QueryRow(ctx,
			"INSERT INTO categories (name) VALUES ($1) RETURNING id", name,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", name, err)
		}
		categoryIDs[name] = id
	}
	log.Info().Int("count", len(categoryIDs)).Msg("categories created")

	type seeded struct {
		id    int64
		price decimal.Decimal
		stock int
	}
	var items []seeded
	for _, p := range products {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("bad seed price %q: %w", p.price, err)
		}
		var id int64
		err = pool.QueryRow(ctx, `
			INSERT INTO products (name, description, price, sku, stock, category_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, p.name, p.description, price, p.sku, p.stock, categoryIDs[p.category]).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert product %q: %w", p.sku, err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO inventory_changes (product_id, change_amount, reason)
			VALUES ($1, $2, $3)
		`, id, p.stock, core.InitialStockReason); err != nil {
			return fmt.Errorf("failed to insert initial stock change for %q: %w", p.sku, err)
		}
		items = append(items, seeded{id: id, price: price, stock: p.stock})
	}
	log.Info().Int("count", len(items)).Msg("products created")

	// Historical sales spread over the past 90 days. Each sale gets a
	// backdated sold_at plus its matching ledger entry; product stock is
	// decremented at the end so the audit trail nets out correctly.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()
	salesCount := 0
	for i := range items {
		it := &items[i]
		for s := 0; s < 8+rng.Intn(12); s++ {
			qty := 1 + rng.Intn(3)
			if it.stock < qty {
				break
			}
			soldAt := now.AddDate(0, 0, -rng.Intn(90)).Add(-time.Duration(rng.Intn(86400)) * time.Second)
			total := it.price.Mul(decimal.NewFromInt(int64(qty)))

			if _, err := pool.Exec(ctx, `
				INSERT INTO sales (product_id, quantity, total_price, sold_at)
				VALUES ($1, $2, $3, $4)
			`, it.id, qty, total, soldAt); err != nil {
				return fmt.Errorf("failed to insert sale: %w", err)
			}
			if _, err := pool.Exec(ctx, `
				INSERT INTO inventory_changes (product_id, change_amount, reason, changed_at)
				VALUES ($1, $2, $3, $4)
			`, it.id, -qty, core.SaleReason, soldAt); err != nil {
				return fmt.Errorf("failed to insert sale inventory change: %w", err)
			}
			it.stock -= qty
			salesCount++
		}
		if _, err := pool.Exec(ctx,
			"UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2",
			it.stock, it.id,
		); err != nil {
			return fmt.Errorf("failed to update seeded stock: %w", err)
		}
	}
	log.Info().Int("count", salesCount).Msg("sales created")

	return nil
}
