package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultAdjustReason is recorded when a caller adjusts stock without
// giving a reason. The sale path always passes SaleReason.
const (
	DefaultAdjustReason = "Manual adjustment"
	InitialStockReason  = "Initial stock"
	SaleReason          = "Sale"
)

// Adjustment is the result of a stock mutation.
type Adjustment struct {
	ProductID     int64  `json:"productId"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
	ChangeAmount  int    `json:"changeAmount"`
	Reason        string `json:"reason"`
}

// InventoryService maintains product stock as a derived, audited quantity.
// Every mutation updates products.stock and appends one inventory_changes
// row in the same transaction, so stock and its audit trail cannot diverge.
type InventoryService interface {
	// Adjust applies a signed stock change to a product. Fails with
	// *NotFoundError when the product does not exist and with
	// *InsufficientStockError when the change would drive stock below zero.
	Adjust(ctx context.Context, productID int64, changeAmount int, reason string) (*Adjustment, error)

	// AdjustInTx is Adjust working within a caller-provided transaction.
	// Used by SalesService to keep the stock decrement atomic with the
	// sale insert.
	AdjustInTx(ctx context.Context, tx pgx.Tx, productID int64, changeAmount int, reason string) (*Adjustment, error)
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func (s *inventoryService) Adjust(ctx context.Context, productID int64, changeAmount int, reason string) (*Adjustment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	adj, err := s.AdjustInTx(ctx, tx, productID, changeAmount, reason)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit inventory adjustment: %w", err)
	}
	return adj, nil
}

func (s *inventoryService) AdjustInTx(ctx context.Context, tx pgx.Tx, productID int64, changeAmount int, reason string) (*Adjustment, error) {
	if reason == "" {
		reason = DefaultAdjustReason
	}

	// Lock the product row so concurrent adjustments serialize on the
	// read-check-write sequence.
	var name string
	var stock int
	err := tx.QueryRow(ctx,
		"SELECT name, stock FROM products WHERE id = $1 FOR UPDATE",
		productID,
	).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "Product", ID: productID}
		}
		return nil, fmt.Errorf("failed to lock product %d: %w", productID, err)
	}

	newStock := stock + changeAmount
	if newStock < 0 {
		requested := changeAmount
		if requested < 0 {
			requested = -requested
		}
		return nil, &InsufficientStockError{ProductName: name, Available: stock, Requested: requested}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2",
		newStock, productID,
	); err != nil {
		return nil, fmt.Errorf("failed to update stock for product %d: %w", productID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_changes (product_id, change_amount, reason)
		VALUES ($1, $2, $3)
	`, productID, changeAmount, reason); err != nil {
		return nil, fmt.Errorf("failed to insert inventory change for product %d: %w", productID, err)
	}

	return &Adjustment{
		ProductID:     productID,
		PreviousStock: stock,
		NewStock:      newStock,
		ChangeAmount:  changeAmount,
		Reason:        reason,
	}, nil
}
