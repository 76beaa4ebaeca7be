package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SalesFilter narrows and paginates a sales listing. Date bounds are
// calendar dates (YYYY-MM-DD), inclusive on both ends; either may be empty.
type SalesFilter struct {
	Page       int
	Limit      int
	StartDate  string
	EndDate    string
	ProductID  *int64
	CategoryID *int64
}

type SalesPage struct {
	Sales      []Sale
	Pagination Pagination
}

type SalesService interface {
	// RecordSale validates stock sufficiency, inserts the sale row, and
	// decrements stock through the inventory ledger — all in one
	// transaction, so a sale can never exist without its stock decrement.
	RecordSale(ctx context.Context, productID int64, quantity int) (*Sale, error)

	// ListSales returns one page of sales ordered by sale time, newest first.
	ListSales(ctx context.Context, filter SalesFilter) (*SalesPage, error)
}

type salesService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
}

func NewSalesService(pool *pgxpool.Pool, inventory InventoryService) SalesService {
	return &salesService{pool: pool, inventory: inventory}
}

func (s *salesService) RecordSale(ctx context.Context, productID int64, quantity int) (*Sale, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var name string
	var price decimal.Decimal
	var stock int
	err = tx.QueryRow(ctx,
		"SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE",
		productID,
	).Scan(&name, &price, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "Product", ID: productID}
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}

	if stock < quantity {
		return nil, &InsufficientStockError{ProductName: name, Available: stock, Requested: quantity}
	}

	sale := Sale{
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		TotalPrice:  price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (product_id, quantity, total_price)
		VALUES ($1, $2, $3)
		RETURNING id, sold_at
	`, productID, quantity, sale.TotalPrice).Scan(&sale.ID, &sale.SoldAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	if _, err := s.inventory.AdjustInTx(ctx, tx, productID, -quantity, SaleReason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return &sale, nil
}

func (s *salesService) ListSales(ctx context.Context, filter SalesFilter) (*SalesPage, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	where := " WHERE 1=1"
	var args []any
	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		where += fmt.Sprintf(" AND s.sold_at::date >= $%d::date", len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		where += fmt.Sprintf(" AND s.sold_at::date <= $%d::date", len(args))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		where += fmt.Sprintf(" AND s.product_id = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}

	from := " FROM sales s JOIN products p ON p.id = s.product_id"

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*)"+from+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	q := fmt.Sprintf(`
		SELECT s.id, s.product_id, p.name, s.quantity, s.total_price, s.sold_at
		%s%s
		ORDER BY s.sold_at DESC
		LIMIT $%d OFFSET $%d`, from, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.ProductName,
			&sale.Quantity, &sale.TotalPrice, &sale.SoldAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales row iteration error: %w", err)
	}

	return &SalesPage{
		Sales:      sales,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}
