package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultPage              = 1
	defaultLimit             = 10
	defaultLowStockThreshold = 10
)

// ProductFilter narrows and paginates a product listing.
type ProductFilter struct {
	Page              int
	Limit             int
	CategoryID        *int64
	LowStock          bool
	LowStockThreshold int
	Search            string // matches name or SKU, case-insensitive
}

type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	SKU         string
	Stock       int
	CategoryID  int64
}

// StockItem is one product line in the inventory status report.
type StockItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Stock        int             `json:"stock"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"categoryName,omitempty"`
}

// InventoryStatus is a snapshot of stock across all products.
type InventoryStatus struct {
	TotalProducts       int             `json:"totalProducts"`
	LowStockProducts    int             `json:"lowStockProducts"`
	LowStockThreshold   int             `json:"lowStockThreshold"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	Products            []StockItem     `json:"products"`
	LowStockAlerts      []StockItem     `json:"lowStockAlerts"`
}

type ProductService interface {
	// ListProducts returns one page of products ordered by creation time,
	// newest first.
	ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error)

	// CreateProduct inserts a product with its initial stock and appends the
	// "Initial stock" ledger entry in the same transaction. Fails with
	// *DuplicateSKUError on SKU collision and *NotFoundError when the
	// category does not exist.
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)

	// InventoryStatus reports stock levels for all products, ordered by
	// stock ascending, with low-stock alerts below the given threshold.
	InventoryStatus(ctx context.Context, lowStockThreshold int) (*InventoryStatus, error)
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

func (s *productService) ListProducts(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.LowStockThreshold < 1 {
		filter.LowStockThreshold = defaultLowStockThreshold
	}

	where := " WHERE 1=1"
	var args []any
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}
	if filter.LowStock {
		args = append(args, filter.LowStockThreshold)
		where += fmt.Sprintf(" AND p.stock < $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.sku ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM products p"+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	q := fmt.Sprintf(`
		SELECT p.id, p.name, p.description, p.price, p.sku, p.stock,
		       COALESCE(p.category_id, 0), COALESCE(c.name, ''),
		       p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.SKU, &p.Stock,
			&p.CategoryID, &p.CategoryName, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product row iteration error: %w", err)
	}

	return &ProductPage{
		Products:   products,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)", input.SKU,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check SKU uniqueness: %w", err)
	}
	if exists {
		return nil, &DuplicateSKUError{SKU: input.SKU}
	}

	var categoryName string
	if err := tx.QueryRow(ctx,
		"SELECT name FROM categories WHERE id = $1", input.CategoryID,
	).Scan(&categoryName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "Category", ID: input.CategoryID}
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	p := Product{
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		SKU:          input.SKU,
		Stock:        input.Stock,
		CategoryID:   input.CategoryID,
		CategoryName: categoryName,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, description, price, sku, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, input.Name, input.Description, input.Price, input.SKU, input.Stock, input.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		// The unique index catches SKU races the pre-check cannot see.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, &DuplicateSKUError{SKU: input.SKU}
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_changes (product_id, change_amount, reason)
		VALUES ($1, $2, $3)
	`, p.ID, input.Stock, InitialStockReason); err != nil {
		return nil, fmt.Errorf("failed to insert initial stock change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}
	return &p, nil
}

func (s *productService) InventoryStatus(ctx context.Context, lowStockThreshold int) (*InventoryStatus, error) {
	if lowStockThreshold < 1 {
		lowStockThreshold = defaultLowStockThreshold
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, p.sku, p.stock, p.price, COALESCE(c.name, '')
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		ORDER BY p.stock ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory status: %w", err)
	}
	defer rows.Close()

	status := &InventoryStatus{
		LowStockThreshold: lowStockThreshold,
		Products:          []StockItem{},
		LowStockAlerts:    []StockItem{},
	}
	for rows.Next() {
		var item StockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.Stock, &item.Price, &item.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		status.Products = append(status.Products, item)
		status.TotalInventoryValue = status.TotalInventoryValue.Add(
			item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
		if item.Stock < lowStockThreshold {
			status.LowStockAlerts = append(status.LowStockAlerts, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory status row iteration error: %w", err)
	}

	status.TotalProducts = len(status.Products)
	status.LowStockProducts = len(status.LowStockAlerts)
	return status, nil
}
