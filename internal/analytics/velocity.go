package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

// Velocity score weights. They are fixed and sum to 1.
const (
	VelocityWeightUnits   = 0.4
	VelocityWeightRevenue = 0.4
	VelocityWeightOrders  = 0.2
)

// VelocityWindow is the trailing window, in observed days, used to smooth
// each category's daily series. A single day is enough to produce a value.
const (
	VelocityWindow     = 7
	VelocityMinPeriods = 1
)

type categoryDay struct {
	units   int64
	revenue decimal.Decimal
	orders  map[string]struct{}
}

// ComputeVelocity scores every category on smoothed daily units, revenue and
// distinct orders, each max-normalized across categories, and ranks them by
// score. Ties keep lexical category order.
//
// Scores are clamped to [0, 100]. Only negative smoothed revenue (a category
// dominated by refund lines) can push the composite below zero; such a
// category scores 0 while its AvgDailyRevenue keeps the negative value.
func ComputeVelocity(lines []domain.OrderLine) domain.VelocityReport {
	byCategory := make(map[string]map[time.Time]*categoryDay)
	for _, l := range lines {
		days, ok := byCategory[l.Category]
		if !ok {
			days = make(map[time.Time]*categoryDay)
			byCategory[l.Category] = days
		}
		d := calendarDate(l.Date)
		day, ok := days[d]
		if !ok {
			day = &categoryDay{revenue: decimal.Zero, orders: make(map[string]struct{})}
			days[d] = day
		}
		if l.Qty.Valid {
			day.units += l.Qty.Int64
		}
		if l.Amount.Valid {
			day.revenue = day.revenue.Add(l.Amount.Decimal)
		}
		day.orders[l.OrderID] = struct{}{}
	}

	categories := make([]domain.CategoryVelocity, 0, len(byCategory))
	var maxUnits, maxRevenue, maxOrders float64
	for _, name := range sortedKeys(byCategory) {
		cv := smoothCategory(name, byCategory[name])
		maxUnits = math.Max(maxUnits, cv.AvgDailyUnits)
		maxRevenue = math.Max(maxRevenue, cv.AvgDailyRevenue)
		maxOrders = math.Max(maxOrders, cv.AvgDailyOrders)
		categories = append(categories, cv)
	}

	for i := range categories {
		c := &categories[i]
		score := safeRatio(c.AvgDailyUnits, maxUnits)*VelocityWeightUnits +
			safeRatio(c.AvgDailyRevenue, maxRevenue)*VelocityWeightRevenue +
			safeRatio(c.AvgDailyOrders, maxOrders)*VelocityWeightOrders
		c.Score = clamp(score*100, 0, 100)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Score > categories[j].Score
	})

	report := domain.VelocityReport{Categories: categories}
	if len(categories) == 0 {
		return report
	}
	report.FastestMoving = &categories[0]
	report.HighestVolume = argmax(categories, func(c domain.CategoryVelocity) float64 { return c.AvgDailyUnits })
	report.HighestRevenue = argmax(categories, func(c domain.CategoryVelocity) float64 { return c.AvgDailyRevenue })
	return report
}

// smoothCategory reduces a category's daily series to the mean of its rolling means
func smoothCategory(name string, days map[time.Time]*categoryDay) domain.CategoryVelocity {
	dates := make([]time.Time, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	units := make([]float64, len(dates))
	revenue := make([]float64, len(dates))
	orders := make([]float64, len(dates))
	for i, d := range dates {
		day := days[d]
		units[i] = float64(day.units)
		revenue[i] = day.revenue.InexactFloat64()
		orders[i] = float64(len(day.orders))
	}

	return domain.CategoryVelocity{
		Category:        name,
		AvgDailyUnits:   mean(RollingMean(units, VelocityWindow, VelocityMinPeriods)),
		AvgDailyRevenue: mean(RollingMean(revenue, VelocityWindow, VelocityMinPeriods)),
		AvgDailyOrders:  mean(RollingMean(orders, VelocityWindow, VelocityMinPeriods)),
	}
}

// argmax returns the first element with the largest value
func argmax[T any](s []T, value func(T) float64) *T {
	if len(s) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(s); i++ {
		if value(s[i]) > value(s[best]) {
			best = i
		}
	}
	return &s[best]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
