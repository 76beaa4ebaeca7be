package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bucket is a time-grouping granularity for revenue aggregation.
type Bucket string

const (
	BucketDaily   Bucket = "daily"
	BucketWeekly  Bucket = "weekly"
	BucketMonthly Bucket = "monthly"
	BucketAnnual  Bucket = "annual"
)

// ParseBucket validates a period query parameter. Empty defaults to daily.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case "":
		return BucketDaily, nil
	case BucketDaily, BucketWeekly, BucketMonthly, BucketAnnual:
		return Bucket(s), nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("invalid period %q", s),
		Details: []FieldError{{
			Field:   "period",
			Message: "period must be one of daily, weekly, monthly, annual",
			Value:   s,
		}},
	}
}

// pattern returns the Postgres to_char format that names this bucket.
// Weekly uses ISO-8601 week numbering (IYYY-IW), so weeks run Monday
// through Sunday and belong to the ISO week-year.
func (b Bucket) pattern() string {
	switch b {
	case BucketWeekly:
		return "IYYY-IW"
	case BucketMonthly:
		return "YYYY-MM"
	case BucketAnnual:
		return "YYYY"
	default:
		return "YYYY-MM-DD"
	}
}

// percentChange returns (current − previous) / previous × 100 rounded to
// two decimal places. Returns 0 when previous is 0.
func percentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Mul(decimal.NewFromInt(100)).DivRound(previous, 2)
}

// summarize folds per-bucket results into report totals.
// AverageOrderValue is 0 when there are no sales.
func summarize(buckets []PeriodRevenue) Summary {
	var sum Summary
	for _, b := range buckets {
		sum.TotalRevenue = sum.TotalRevenue.Add(b.Revenue)
		sum.TotalQuantity += b.TotalQuantity
		sum.TotalSales += b.TotalSales
	}
	if sum.TotalSales > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.DivRound(decimal.NewFromInt(int64(sum.TotalSales)), 2)
	}
	return sum
}
