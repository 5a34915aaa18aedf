package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

// MonthLayout formats the monthly series keys
const MonthLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

// ComputeTrend builds the daily and monthly revenue series and the
// month-over-month growth figures derived from them.
func ComputeTrend(lines []domain.OrderLine) domain.TrendReport {
	report := domain.TrendReport{
		Daily:     dailySeries(lines),
		Monthly:   monthlySeries(lines),
		MoMGrowth: []*float64{},
	}

	var defined []float64
	for i := range report.Monthly {
		var g *float64
		if i > 0 {
			g = growth(report.Monthly[i-1].Sales, report.Monthly[i].Sales)
		}
		if g != nil {
			defined = append(defined, *g)
		}
		report.MoMGrowth = append(report.MoMGrowth, g)
	}

	if len(defined) > 0 {
		var sum float64
		for _, g := range defined {
			sum += g
		}
		avg := sum / float64(len(defined))
		report.AverageMonthlyGrowth = &avg
	}
	if n := len(report.MoMGrowth); n > 0 {
		report.LastMonthGrowth = report.MoMGrowth[n-1]
	}

	for i := range report.Monthly {
		if report.BestMonth == nil || report.Monthly[i].Sales.GreaterThan(report.BestMonth.Sales) {
			best := report.Monthly[i]
			report.BestMonth = &best
		}
	}

	return report
}

// growth is the percent change from prev to cur; nil when prev is zero
func growth(prev, cur decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}
	g := cur.Sub(prev).Div(prev).Mul(hundred).InexactFloat64()
	return &g
}

func dailySeries(lines []domain.OrderLine) []domain.DailySales {
	sales := make(map[time.Time]decimal.Decimal)
	orders := make(map[time.Time]map[string]struct{})
	for _, l := range lines {
		d := calendarDate(l.Date)
		sum, ok := sales[d]
		if !ok {
			sum = decimal.Zero
			orders[d] = make(map[string]struct{})
		}
		if l.Amount.Valid {
			sum = sum.Add(l.Amount.Decimal)
		}
		sales[d] = sum
		orders[d][l.OrderID] = struct{}{}
	}

	days := make([]time.Time, 0, len(sales))
	for d := range sales {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]domain.DailySales, 0, len(days))
	for _, d := range days {
		out = append(out, domain.DailySales{Date: d, Sales: sales[d], Orders: len(orders[d])})
	}
	return out
}

func monthlySeries(lines []domain.OrderLine) []domain.MonthlySales {
	sales := make(map[string]decimal.Decimal)
	for _, l := range lines {
		key := l.Date.Format(MonthLayout)
		sum, ok := sales[key]
		if !ok {
			sum = decimal.Zero
		}
		if l.Amount.Valid {
			sum = sum.Add(l.Amount.Decimal)
		}
		sales[key] = sum
	}

	// YYYY-MM keys sort chronologically
	out := make([]domain.MonthlySales, 0, len(sales))
	for _, k := range sortedKeys(sales) {
		out = append(out, domain.MonthlySales{Month: k, Sales: sales[k]})
	}
	return out
}
