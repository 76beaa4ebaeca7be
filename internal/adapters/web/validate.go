package web

import (
	"net/url"
	"regexp"
	"strconv"
	"time"

	"inventory-api/internal/core"

	"github.com/shopspring/decimal"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9-_]+$`)

// fieldErrors collects field-level validation failures for one request.
type fieldErrors []core.FieldError

func (f *fieldErrors) add(field, message string, value any) {
	*f = append(*f, core.FieldError{Field: field, Message: message, Value: value})
}

func (f fieldErrors) toError() error {
	if len(f) == 0 {
		return nil
	}
	return &core.ValidationError{Message: "Validation failed", Details: f}
}

// ── Request bodies ────────────────────────────────────────────────────────────

type createProductBody struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SKU         string          `json:"sku"`
	Stock       *int            `json:"stock"`
	CategoryID  *int64          `json:"categoryId"`
}

func (b createProductBody) validate() (core.CreateProductInput, error) {
	var errs fieldErrors

	switch n := len(b.Name); {
	case n == 0:
		errs.add("name", "Product name is required", nil)
	case n < 2:
		errs.add("name", "Product name must be at least 2 characters long", b.Name)
	case n > 100:
		errs.add("name", "Product name must not exceed 100 characters", b.Name)
	}

	if b.Description != nil && len(*b.Description) > 500 {
		errs.add("description", "Description must not exceed 500 characters", nil)
	}

	if !b.Price.IsPositive() {
		errs.add("price", "Price must be a positive number", b.Price.String())
	} else if b.Price.Exponent() < -2 {
		errs.add("price", "Price must have at most 2 decimal places", b.Price.String())
	}

	switch n := len(b.SKU); {
	case n == 0:
		errs.add("sku", "SKU is required", nil)
	case n < 3:
		errs.add("sku", "SKU must be at least 3 characters long", b.SKU)
	case n > 50:
		errs.add("sku", "SKU must not exceed 50 characters", b.SKU)
	default:
		if !skuPattern.MatchString(b.SKU) {
			errs.add("sku", "SKU can only contain letters, numbers, hyphens, and underscores", b.SKU)
		}
	}

	if b.Stock == nil {
		errs.add("stock", "Stock is required", nil)
	} else if *b.Stock < 0 {
		errs.add("stock", "Stock must be non-negative", *b.Stock)
	}

	if b.CategoryID == nil {
		errs.add("categoryId", "Category ID is required", nil)
	} else if *b.CategoryID < 1 {
		errs.add("categoryId", "Category ID must be positive", *b.CategoryID)
	}

	if err := errs.toError(); err != nil {
		return core.CreateProductInput{}, err
	}
	return core.CreateProductInput{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		SKU:         b.SKU,
		Stock:       *b.Stock,
		CategoryID:  *b.CategoryID,
	}, nil
}

type inventoryUpdateBody struct {
	ChangeAmount *int   `json:"changeAmount"`
	Reason       string `json:"reason"`
}

func (b inventoryUpdateBody) validate() (int, string, error) {
	var errs fieldErrors
	if b.ChangeAmount == nil {
		errs.add("changeAmount", "Change amount is required", nil)
	}
	if len(b.Reason) > 200 {
		errs.add("reason", "Reason must not exceed 200 characters", nil)
	}
	if err := errs.toError(); err != nil {
		return 0, "", err
	}
	return *b.ChangeAmount, b.Reason, nil
}

type saleBody struct {
	ProductID *int64 `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (b saleBody) validate() (int64, int, error) {
	var errs fieldErrors
	if b.ProductID == nil {
		errs.add("productId", "Product ID is required", nil)
	} else if *b.ProductID < 1 {
		errs.add("productId", "Product ID must be positive", *b.ProductID)
	}
	if b.Quantity == nil {
		errs.add("quantity", "Quantity is required", nil)
	} else if *b.Quantity < 1 {
		errs.add("quantity", "Quantity must be positive", *b.Quantity)
	}
	if err := errs.toError(); err != nil {
		return 0, 0, err
	}
	return *b.ProductID, *b.Quantity, nil
}

// ── Query parameters ──────────────────────────────────────────────────────────

func parseIntParam(q url.Values, name string, errs *fieldErrors) *int {
	s := q.Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		errs.add(name, name+" must be an integer", s)
		return nil
	}
	return &v
}

func parseIDParam(q url.Values, name string, errs *fieldErrors) *int64 {
	s := q.Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		errs.add(name, name+" must be a positive integer", s)
		return nil
	}
	return &v
}

func parseDateParam(q url.Values, name string, required bool, errs *fieldErrors) string {
	s := q.Get(name)
	if s == "" {
		if required {
			errs.add(name, name+" is required", nil)
		}
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		errs.add(name, name+" must be a valid date in YYYY-MM-DD format", s)
		return ""
	}
	return s
}

func parsePagination(q url.Values, errs *fieldErrors) (page, limit int) {
	if p := parseIntParam(q, "page", errs); p != nil {
		if *p < 1 {
			errs.add("page", "Page must be at least 1", *p)
		} else {
			page = *p
		}
	}
	if l := parseIntParam(q, "limit", errs); l != nil {
		switch {
		case *l < 1:
			errs.add("limit", "Limit must be at least 1", *l)
		case *l > 100:
			errs.add("limit", "Limit must not exceed 100", *l)
		default:
			limit = *l
		}
	}
	return page, limit
}

func productFilterFromQuery(q url.Values) (core.ProductFilter, error) {
	var errs fieldErrors
	var filter core.ProductFilter

	filter.Page, filter.Limit = parsePagination(q, &errs)
	filter.CategoryID = parseIDParam(q, "category", &errs)
	filter.Search = q.Get("search")

	if s := q.Get("lowStock"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			errs.add("lowStock", "lowStock must be a boolean", s)
		}
		filter.LowStock = v
	}
	if t := parseIntParam(q, "lowStockThreshold", &errs); t != nil {
		if *t < 1 {
			errs.add("lowStockThreshold", "lowStockThreshold must be at least 1", *t)
		} else {
			filter.LowStockThreshold = *t
		}
	}

	if err := errs.toError(); err != nil {
		return core.ProductFilter{}, err
	}
	return filter, nil
}

func salesFilterFromQuery(q url.Values) (core.SalesFilter, error) {
	var errs fieldErrors
	var filter core.SalesFilter

	filter.Page, filter.Limit = parsePagination(q, &errs)
	filter.StartDate = parseDateParam(q, "startDate", false, &errs)
	filter.EndDate = parseDateParam(q, "endDate", false, &errs)
	filter.ProductID = parseIDParam(q, "productId", &errs)
	filter.CategoryID = parseIDParam(q, "categoryId", &errs)

	if err := errs.toError(); err != nil {
		return core.SalesFilter{}, err
	}
	return filter, nil
}

func dateRangeFromQuery(q url.Values) (start, end string, err error) {
	var errs fieldErrors
	start = parseDateParam(q, "startDate", false, &errs)
	end = parseDateParam(q, "endDate", false, &errs)
	return start, end, errs.toError()
}

func comparisonFromQuery(q url.Values) (current, previous core.DateRange, err error) {
	var errs fieldErrors
	current.Start = parseDateParam(q, "currentStartDate", true, &errs)
	current.End = parseDateParam(q, "currentEndDate", true, &errs)
	previous.Start = parseDateParam(q, "previousStartDate", true, &errs)
	previous.End = parseDateParam(q, "previousEndDate", true, &errs)
	return current, previous, errs.toError()
}
