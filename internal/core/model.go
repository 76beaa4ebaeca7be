package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	SKU          string          `json:"sku"`
	Stock        int             `json:"stock"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Sale is immutable once recorded. TotalPrice is a snapshot of
// price × quantity at sale time and is never recomputed.
type Sale struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	SoldAt      time.Time       `json:"soldAt"`
}

// InventoryChange is one entry in the append-only stock audit log.
type InventoryChange struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	ChangeAmount int       `json:"changeAmount"`
	Reason       string    `json:"reason"`
	ChangedAt    time.Time `json:"changedAt"`
}

// Pagination describes one page of a list result.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func newPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
