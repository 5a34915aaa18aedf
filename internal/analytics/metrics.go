package analytics

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

// TopN caps the state, city and promotion leaderboards
const TopN = 10

// ComputeMetrics computes the sales, fulfillment, geography, customer and
// efficiency groups over lines. Empty input yields zero values and empty slices.
func ComputeMetrics(lines []domain.OrderLine) domain.MetricsReport {
	return domain.MetricsReport{
		Sales:       salesPerformance(lines),
		Fulfillment: fulfillment(lines),
		Geography:   geography(lines),
		Customer:    customer(lines),
		Efficiency:  efficiency(lines),
	}
}

func salesPerformance(lines []domain.OrderLine) domain.SalesPerformance {
	total := sumAmount(lines)
	orders := distinctOrders(lines, nil)

	return domain.SalesPerformance{
		TotalSales:        total,
		TotalOrders:       orders,
		AverageOrderValue: safeDecimalRatio(total, int64(orders)),
		TotalUnits:        sumQty(lines),
		CategorySales:     amountBy(lines, func(l domain.OrderLine) string { return l.Category }),
	}
}

func fulfillment(lines []domain.OrderLine) domain.FulfillmentBreakdown {
	return domain.FulfillmentBreakdown{
		StatusDistribution:          countBy(lines, func(l domain.OrderLine) string { return l.Status }),
		FulfillmentDistribution:     countBy(lines, func(l domain.OrderLine) string { return l.FulfilledBy }),
		ShippingServiceDistribution: countBy(lines, func(l domain.OrderLine) string { return l.ShipServiceLevel }),
	}
}

func geography(lines []domain.OrderLine) domain.GeographyBreakdown {
	states := amountBy(lines, func(l domain.OrderLine) string { return l.ShipState })
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Amount.GreaterThan(states[j].Amount)
	})

	return domain.GeographyBreakdown{
		StateSales:      head(states, TopN),
		CityOrderCounts: head(countBy(lines, func(l domain.OrderLine) string { return l.ShipCity }), TopN),
	}
}

func customer(lines []domain.OrderLine) domain.CustomerBreakdown {
	counts := countBy(lines, func(l domain.OrderLine) string { return strconv.FormatBool(l.B2B) })
	split := make([]domain.B2BCount, 0, len(counts))
	for _, c := range counts {
		flag, _ := strconv.ParseBool(c.Key)
		split = append(split, domain.B2BCount{B2B: flag, Count: c.Count})
	}

	sizes := make([]int64, 0, len(lines))
	for _, l := range lines {
		if l.Qty.Valid {
			sizes = append(sizes, l.Qty.Int64)
		}
	}

	return domain.CustomerBreakdown{
		B2BSplit:              split,
		OrderSizeDistribution: sizes,
	}
}

func efficiency(lines []domain.OrderLine) domain.OperationalEfficiency {
	total := float64(distinctOrders(lines, nil))
	cancelled := float64(distinctOrders(lines, domain.OrderLine.IsCancelled))
	promoted := float64(distinctOrders(lines, domain.OrderLine.HasPromotion))

	var units, n float64
	for _, l := range lines {
		if l.Qty.Valid {
			units += float64(l.Qty.Int64)
			n++
		}
	}

	return domain.OperationalEfficiency{
		CancellationRate:   safeRatio(cancelled, total) * 100,
		PromotionUsageRate: safeRatio(promoted, total) * 100,
		AvgUnitsPerOrder:   safeRatio(units, n),
	}
}

// distinctOrders counts distinct order ids among lines accepted by keep (nil keeps all)
func distinctOrders(lines []domain.OrderLine, keep func(domain.OrderLine) bool) int {
	seen := make(map[string]struct{})
	for _, l := range lines {
		if keep != nil && !keep(l) {
			continue
		}
		seen[l.OrderID] = struct{}{}
	}
	return len(seen)
}

func sumAmount(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Amount.Valid {
			total = total.Add(l.Amount.Decimal)
		}
	}
	return total
}

func sumQty(lines []domain.OrderLine) int64 {
	var total int64
	for _, l := range lines {
		if l.Qty.Valid {
			total += l.Qty.Int64
		}
	}
	return total
}

// amountBy sums valid amounts per key, in lexical key order
func amountBy(lines []domain.OrderLine, key func(domain.OrderLine) string) []domain.KeyAmount {
	sums := make(map[string]decimal.Decimal)
	for _, l := range lines {
		k := key(l)
		sum, ok := sums[k]
		if !ok {
			sum = decimal.Zero
		}
		if l.Amount.Valid {
			sum = sum.Add(l.Amount.Decimal)
		}
		sums[k] = sum
	}

	out := make([]domain.KeyAmount, 0, len(sums))
	for _, k := range sortedKeys(sums) {
		out = append(out, domain.KeyAmount{Key: k, Amount: sums[k]})
	}
	return out
}

// countBy counts lines per key, largest first; ties stay in lexical key order
func countBy(lines []domain.OrderLine, key func(domain.OrderLine) string) []domain.KeyCount {
	counts := make(map[string]int)
	for _, l := range lines {
		counts[key(l)]++
	}

	out := make([]domain.KeyCount, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		out = append(out, domain.KeyCount{Key: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// safeRatio returns 0 instead of NaN or Inf on a zero denominator
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func safeDecimalRatio(num decimal.Decimal, den int64) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return num.Div(decimal.NewFromInt(den))
}
