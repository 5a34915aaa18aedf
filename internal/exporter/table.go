package exporter

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

// Table is one flat section of a report, written as one CSV file or one
// worksheet. Numeric marks the columns a spreadsheet should store as numbers.
type Table struct {
	Name    string
	Headers []string
	Numeric []bool
	Records [][]string
}

// Section names, in export order
const (
	SectionSummary       = "summary"
	SectionCategorySales = "category_sales"
	SectionStatus        = "status"
	SectionFulfillment   = "fulfillment"
	SectionShipService   = "ship_service"
	SectionStateSales    = "state_sales"
	SectionCityOrders    = "city_orders"
	SectionB2B           = "b2b"
	SectionOrderUnits    = "order_units"
	SectionDaily         = "daily"
	SectionMonthly       = "monthly"
	SectionVelocity      = "velocity"
	SectionPromotions    = "promotions"
)

// Tables flattens report into its export sections
func Tables(report domain.AnalyticsReport) []Table {
	m := report.Metrics
	return []Table{
		summaryTable(report),
		keyAmountTable(SectionCategorySales, "category", m.Sales.CategorySales),
		keyCountTable(SectionStatus, "status", m.Fulfillment.StatusDistribution),
		keyCountTable(SectionFulfillment, "fulfilled_by", m.Fulfillment.FulfillmentDistribution),
		keyCountTable(SectionShipService, "ship_service_level", m.Fulfillment.ShippingServiceDistribution),
		keyAmountTable(SectionStateSales, "state", m.Geography.StateSales),
		keyCountTable(SectionCityOrders, "city", m.Geography.CityOrderCounts),
		b2bTable(m.Customer.B2BSplit),
		orderUnitsTable(m.Customer.OrderSizeDistribution),
		dailyTable(report.Trend.Daily),
		monthlyTable(report.Trend),
		velocityTable(report.Velocity.Categories),
		promotionsTable(report.Promotions.All),
	}
}

func summaryTable(report domain.AnalyticsReport) Table {
	m := report.Metrics
	trend := report.Trend

	bestMonth, bestMonthSales := "", ""
	if trend.BestMonth != nil {
		bestMonth = trend.BestMonth.Month
		bestMonthSales = formatDecimal(trend.BestMonth.Sales)
	}

	rows := [][]string{
		{"generated_at", report.GeneratedAt.UTC().Format(time.RFC3339)},
		{"filter_start", formatDate(report.Filter.StartDate)},
		{"filter_end", formatDate(report.Filter.EndDate)},
		{"filter_category", report.Filter.Category},
		{"filter_region", report.Filter.Region},
		{"rows_read", formatInt(int64(report.Normalize.RowsRead))},
		{"rows_kept", formatInt(int64(report.Normalize.RowsKept))},
		{"skipped_dates", formatInt(int64(report.Normalize.SkippedDates))},
		{"amount_misses", formatInt(int64(report.Normalize.AmountMisses))},
		{"qty_misses", formatInt(int64(report.Normalize.QtyMisses))},
		{"line_count", formatInt(int64(report.LineCount))},
		{"total_sales", formatDecimal(m.Sales.TotalSales)},
		{"total_orders", formatInt(int64(m.Sales.TotalOrders))},
		{"average_order_value", formatDecimal(m.Sales.AverageOrderValue)},
		{"total_units", formatInt(m.Sales.TotalUnits)},
		{"cancellation_rate", formatFloat(m.Efficiency.CancellationRate)},
		{"promotion_usage_rate", formatFloat(m.Efficiency.PromotionUsageRate)},
		{"avg_units_per_order", formatFloat(m.Efficiency.AvgUnitsPerOrder)},
		{"average_monthly_growth", formatOptional(trend.AverageMonthlyGrowth)},
		{"last_month_growth", formatOptional(trend.LastMonthGrowth)},
		{"best_month", bestMonth},
		{"best_month_sales", bestMonthSales},
	}
	if v := report.Velocity.FastestMoving; v != nil {
		rows = append(rows, []string{"fastest_moving_category", v.Category})
	}
	if p := report.Promotions.BestPromotion; p != nil {
		rows = append(rows, []string{"best_promotion", p.PromotionID})
	}

	return Table{
		Name:    SectionSummary,
		Headers: []string{"metric", "value"},
		Numeric: []bool{false, false},
		Records: rows,
	}
}

func keyAmountTable(name, key string, values []domain.KeyAmount) Table {
	t := Table{
		Name:    name,
		Headers: []string{key, "amount"},
		Numeric: []bool{false, true},
		Records: make([][]string, 0, len(values)),
	}
	for _, v := range values {
		t.Records = append(t.Records, []string{v.Key, formatDecimal(v.Amount)})
	}
	return t
}

func keyCountTable(name, key string, values []domain.KeyCount) Table {
	t := Table{
		Name:    name,
		Headers: []string{key, "count"},
		Numeric: []bool{false, true},
		Records: make([][]string, 0, len(values)),
	}
	for _, v := range values {
		t.Records = append(t.Records, []string{v.Key, formatInt(int64(v.Count))})
	}
	return t
}

func b2bTable(values []domain.B2BCount) Table {
	t := Table{
		Name:    SectionB2B,
		Headers: []string{"b2b", "count"},
		Numeric: []bool{false, true},
		Records: make([][]string, 0, len(values)),
	}
	for _, v := range values {
		t.Records = append(t.Records, []string{formatBool(v.B2B), formatInt(int64(v.Count))})
	}
	return t
}

func orderUnitsTable(values []int64) Table {
	t := Table{
		Name:    SectionOrderUnits,
		Headers: []string{"units"},
		Numeric: []bool{true},
		Records: make([][]string, 0, len(values)),
	}
	for _, v := range values {
		t.Records = append(t.Records, []string{formatInt(v)})
	}
	return t
}

func dailyTable(days []domain.DailySales) Table {
	t := Table{
		Name:    SectionDaily,
		Headers: []string{"date", "sales", "orders"},
		Numeric: []bool{false, true, true},
		Records: make([][]string, 0, len(days)),
	}
	for _, d := range days {
		t.Records = append(t.Records, []string{formatDate(d.Date), formatDecimal(d.Sales), formatInt(int64(d.Orders))})
	}
	return t
}

func monthlyTable(trend domain.TrendReport) Table {
	t := Table{
		Name:    SectionMonthly,
		Headers: []string{"month", "sales", "mom_growth"},
		Numeric: []bool{false, true, true},
		Records: make([][]string, 0, len(trend.Monthly)),
	}
	for i, m := range trend.Monthly {
		var growth *float64
		if i < len(trend.MoMGrowth) {
			growth = trend.MoMGrowth[i]
		}
		t.Records = append(t.Records, []string{m.Month, formatDecimal(m.Sales), formatOptional(growth)})
	}
	return t
}

func velocityTable(categories []domain.CategoryVelocity) Table {
	t := Table{
		Name:    SectionVelocity,
		Headers: []string{"category", "avg_daily_units", "avg_daily_revenue", "avg_daily_orders", "score"},
		Numeric: []bool{false, true, true, true, true},
		Records: make([][]string, 0, len(categories)),
	}
	for _, c := range categories {
		t.Records = append(t.Records, []string{
			c.Category,
			formatFloat(c.AvgDailyUnits),
			formatFloat(c.AvgDailyRevenue),
			formatFloat(c.AvgDailyOrders),
			formatFloat(c.Score),
		})
	}
	return t
}

func promotionsTable(promos []domain.PromotionStats) Table {
	t := Table{
		Name:    SectionPromotions,
		Headers: []string{"promotion_id", "order_count", "total_revenue", "total_units", "avg_order_value", "avg_units_per_order"},
		Numeric: []bool{false, true, true, true, true, true},
		Records: make([][]string, 0, len(promos)),
	}
	for _, p := range promos {
		t.Records = append(t.Records, []string{
			p.PromotionID,
			formatInt(int64(p.OrderCount)),
			formatDecimal(p.TotalRevenue),
			formatInt(p.TotalUnits),
			formatDecimal(p.AvgOrderValue),
			formatFloat(p.AvgUnitsPerOrder),
		})
	}
	return t
}
