package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// KeyCount is a row count for one group value
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// KeyAmount is a summed amount for one group value
type KeyAmount struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// B2BCount is the number of lines carrying one B2B flag value
type B2BCount struct {
	B2B   bool `json:"b2b"`
	Count int  `json:"count"`
}

// SalesPerformance represents headline sales figures
type SalesPerformance struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalUnits        int64           `json:"total_units"`
	CategorySales     []KeyAmount     `json:"category_sales"`
}

// FulfillmentBreakdown represents line counts by status, fulfiller and shipping service
type FulfillmentBreakdown struct {
	StatusDistribution          []KeyCount `json:"status_distribution"`
	FulfillmentDistribution     []KeyCount `json:"fulfillment_distribution"`
	ShippingServiceDistribution []KeyCount `json:"shipping_service_distribution"`
}

// GeographyBreakdown represents the leading states and cities
type GeographyBreakdown struct {
	StateSales      []KeyAmount `json:"state_sales"`
	CityOrderCounts []KeyCount  `json:"city_order_counts"`
}

// CustomerBreakdown represents customer mix and order sizes
type CustomerBreakdown struct {
	B2BSplit              []B2BCount `json:"b2b_split"`
	OrderSizeDistribution []int64    `json:"order_size_distribution"`
}

// OperationalEfficiency represents the order-level ratios. Rates are percentages in [0, 100].
type OperationalEfficiency struct {
	CancellationRate   float64 `json:"cancellation_rate"`
	PromotionUsageRate float64 `json:"promotion_usage_rate"`
	AvgUnitsPerOrder   float64 `json:"avg_units_per_order"`
}

// MetricsReport groups every metric computed over a filtered set of lines
type MetricsReport struct {
	Sales       SalesPerformance      `json:"sales"`
	Fulfillment FulfillmentBreakdown  `json:"fulfillment"`
	Geography   GeographyBreakdown    `json:"geography"`
	Customer    CustomerBreakdown     `json:"customer"`
	Efficiency  OperationalEfficiency `json:"efficiency"`
}

// DailySales represents revenue and distinct orders for one calendar day
type DailySales struct {
	Date   time.Time       `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

// MonthlySales represents revenue for one calendar month keyed as YYYY-MM
type MonthlySales struct {
	Month string          `json:"month"`
	Sales decimal.Decimal `json:"sales"`
}

// TrendReport represents the daily and monthly series with month-over-month growth.
// MoMGrowth is aligned with Monthly; its first entry is always nil.
type TrendReport struct {
	Daily                []DailySales   `json:"daily"`
	Monthly              []MonthlySales `json:"monthly"`
	MoMGrowth            []*float64     `json:"mom_growth"`
	AverageMonthlyGrowth *float64       `json:"average_monthly_growth"`
	LastMonthGrowth      *float64       `json:"last_month_growth"`
	BestMonth            *MonthlySales  `json:"best_month"`
}

// GrowthSeries returns the growth values of every month after the first
func (r TrendReport) GrowthSeries() []*float64 {
	if len(r.MoMGrowth) < 2 {
		return []*float64{}
	}
	return r.MoMGrowth[1:]
}

// CategoryVelocity represents the smoothed daily averages and composite score of one category
type CategoryVelocity struct {
	Category        string  `json:"category"`
	AvgDailyUnits   float64 `json:"avg_daily_units"`
	AvgDailyRevenue float64 `json:"avg_daily_revenue"`
	AvgDailyOrders  float64 `json:"avg_daily_orders"`
	Score           float64 `json:"score"`
}

// VelocityReport ranks categories by score, highest first
type VelocityReport struct {
	Categories     []CategoryVelocity `json:"categories"`
	FastestMoving  *CategoryVelocity  `json:"fastest_moving"`
	HighestVolume  *CategoryVelocity  `json:"highest_volume"`
	HighestRevenue *CategoryVelocity  `json:"highest_revenue"`
}

// PromotionStats represents the rollup of one promotion id
type PromotionStats struct {
	PromotionID      string          `json:"promotion_id"`
	OrderCount       int             `json:"order_count"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalUnits       int64           `json:"total_units"`
	AvgOrderValue    decimal.Decimal `json:"avg_order_value"`
	AvgUnitsPerOrder float64         `json:"avg_units_per_order"`
}

// PromotionReport ranks promotions by revenue, highest first
type PromotionReport struct {
	All                  []PromotionStats `json:"all"`
	TopByRevenue         []PromotionStats `json:"top_by_revenue"`
	BestPromotion        *PromotionStats  `json:"best_promotion"`
	HighestAOV           *PromotionStats  `json:"highest_aov"`
	HighestUnitsPerOrder *PromotionStats  `json:"highest_units_per_order"`
}

// AnalyticsReport bundles every engine result for one filter
type AnalyticsReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Filter      Filter          `json:"filter"`
	LineCount   int             `json:"line_count"`
	Normalize   NormalizeReport `json:"normalize"`
	Metrics     MetricsReport   `json:"metrics"`
	Trend       TrendReport     `json:"trend"`
	Velocity    VelocityReport  `json:"velocity"`
	Promotions  PromotionReport `json:"promotions"`
}
