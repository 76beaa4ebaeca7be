package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PeriodRevenue is the aggregate for one time bucket.
type PeriodRevenue struct {
	Period        string          `json:"period"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalSales    int             `json:"totalSales"`
}

// Summary totals a revenue report across all returned buckets.
type Summary struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalQuantity     int             `json:"totalQuantity"`
	TotalSales        int             `json:"totalSales"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type RevenueReport struct {
	Period    Bucket          `json:"period"`
	Analytics []PeriodRevenue `json:"analytics"`
	Summary   Summary         `json:"summary"`
}

// CategoryRevenue is the aggregate for one category. CategoryID is nil for
// sales of products without a category.
type CategoryRevenue struct {
	CategoryID    *int64          `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalSales    int             `json:"totalSales"`
}

// DateRange is an inclusive calendar-date range (YYYY-MM-DD).
type DateRange struct {
	Start string
	End   string
}

// PeriodTotals aggregates one comparison period.
type PeriodTotals struct {
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalSales    int             `json:"totalSales"`
}

// Comparison carries percentage deltas between two periods, rounded to
// two decimal places, 0 when the previous value is 0.
type Comparison struct {
	RevenueChange  decimal.Decimal `json:"revenueChange"`
	QuantityChange decimal.Decimal `json:"quantityChange"`
	SalesChange    decimal.Decimal `json:"salesChange"`
}

type ComparisonReport struct {
	CurrentPeriod  PeriodTotals `json:"currentPeriod"`
	PreviousPeriod PeriodTotals `json:"previousPeriod"`
	Comparison     Comparison   `json:"comparison"`
}

// AnalyticsService provides read-only revenue aggregation over the sales log.
type AnalyticsService interface {
	// RevenueByPeriod groups sales into time buckets, ordered by period
	// descending. Date bounds are optional and inclusive; either side may
	// be given alone for a one-sided filter.
	RevenueByPeriod(ctx context.Context, bucket Bucket, startDate, endDate string) (*RevenueReport, error)

	// RevenueByCategory groups sales by product category, ordered by
	// revenue descending. Products without a category land in a
	// null-category bucket named "Uncategorized".
	RevenueByCategory(ctx context.Context, startDate, endDate string) ([]CategoryRevenue, error)

	// ComparePeriods aggregates two inclusive date ranges and computes
	// percentage deltas between them.
	ComparePeriods(ctx context.Context, current, previous DateRange) (*ComparisonReport, error)
}

type analyticsService struct {
	pool *pgxpool.Pool
}

func NewAnalyticsService(pool *pgxpool.Pool) AnalyticsService {
	return &analyticsService{pool: pool}
}

func (s *analyticsService) RevenueByPeriod(ctx context.Context, bucket Bucket, startDate, endDate string) (*RevenueReport, error) {
	args := []any{bucket.pattern()}
	q := `
		SELECT to_char(s.sold_at, $1) AS period,
		       SUM(s.total_price), SUM(s.quantity), COUNT(s.id)
		FROM sales s
		WHERE 1=1`
	if startDate != "" {
		args = append(args, startDate)
		q += fmt.Sprintf(" AND s.sold_at::date >= $%d::date", len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		q += fmt.Sprintf(" AND s.sold_at::date <= $%d::date", len(args))
	}
	q += " GROUP BY 1 ORDER BY 1 DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by period: %w", err)
	}
	defer rows.Close()

	buckets := []PeriodRevenue{}
	for rows.Next() {
		var pr PeriodRevenue
		if err := rows.Scan(&pr.Period, &pr.Revenue, &pr.TotalQuantity, &pr.TotalSales); err != nil {
			return nil, fmt.Errorf("failed to scan revenue bucket: %w", err)
		}
		buckets = append(buckets, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revenue bucket iteration error: %w", err)
	}

	return &RevenueReport{
		Period:    bucket,
		Analytics: buckets,
		Summary:   summarize(buckets),
	}, nil
}

func (s *analyticsService) RevenueByCategory(ctx context.Context, startDate, endDate string) ([]CategoryRevenue, error) {
	var args []any
	q := `
		SELECT c.id, COALESCE(c.name, 'Uncategorized'),
		       SUM(s.total_price) AS revenue, SUM(s.quantity), COUNT(s.id)
		FROM sales s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE 1=1`
	if startDate != "" {
		args = append(args, startDate)
		q += fmt.Sprintf(" AND s.sold_at::date >= $%d::date", len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		q += fmt.Sprintf(" AND s.sold_at::date <= $%d::date", len(args))
	}
	q += " GROUP BY c.id, c.name ORDER BY revenue DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by category: %w", err)
	}
	defer rows.Close()

	results := []CategoryRevenue{}
	for rows.Next() {
		var cr CategoryRevenue
		if err := rows.Scan(&cr.CategoryID, &cr.CategoryName, &cr.Revenue, &cr.TotalQuantity, &cr.TotalSales); err != nil {
			return nil, fmt.Errorf("failed to scan category revenue: %w", err)
		}
		results = append(results, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category revenue iteration error: %w", err)
	}
	return results, nil
}

func (s *analyticsService) ComparePeriods(ctx context.Context, current, previous DateRange) (*ComparisonReport, error) {
	cur, err := s.rangeTotals(ctx, current)
	if err != nil {
		return nil, err
	}
	prev, err := s.rangeTotals(ctx, previous)
	if err != nil {
		return nil, err
	}

	return &ComparisonReport{
		CurrentPeriod:  cur,
		PreviousPeriod: prev,
		Comparison: Comparison{
			RevenueChange:  percentChange(cur.Revenue, prev.Revenue),
			QuantityChange: percentChange(decimal.NewFromInt(int64(cur.TotalQuantity)), decimal.NewFromInt(int64(prev.TotalQuantity))),
			SalesChange:    percentChange(decimal.NewFromInt(int64(cur.TotalSales)), decimal.NewFromInt(int64(prev.TotalSales))),
		},
	}, nil
}

func (s *analyticsService) rangeTotals(ctx context.Context, r DateRange) (PeriodTotals, error) {
	totals := PeriodTotals{StartDate: r.Start, EndDate: r.End}
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0), COALESCE(SUM(quantity), 0), COUNT(id)
		FROM sales
		WHERE sold_at::date >= $1::date AND sold_at::date <= $2::date
	`, r.Start, r.End).Scan(&totals.Revenue, &totals.TotalQuantity, &totals.TotalSales)
	if err != nil {
		return totals, fmt.Errorf("failed to aggregate period %s..%s: %w", r.Start, r.End, err)
	}
	return totals, nil
}
