package core

import "fmt"

// NotFoundError reports a missing product or category.
type NotFoundError struct {
	Resource string // "Product" or "Category"
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

// InsufficientStockError reports a stock mutation that would drive
// a product's stock below zero.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("Insufficient stock for product %q. Available: %d, Requested: %d",
			e.ProductName, e.Available, e.Requested)
	}
	return fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// DuplicateSKUError reports a SKU collision on product creation.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("Product with SKU %q already exists", e.SKU)
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError carries field-level details for input that failed
// boundary checks.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}
