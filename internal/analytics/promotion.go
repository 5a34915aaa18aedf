package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"salespulse/pkg/contracts/domain"
)

// ComputePromotions rolls lines up by promotion id and ranks the groups by
// revenue. The no-promotion sentinel forms one group like any other id.
func ComputePromotions(lines []domain.OrderLine) domain.PromotionReport {
	type group struct {
		orders  map[string]struct{}
		revenue decimal.Decimal
		units   int64
	}

	groups := make(map[string]*group)
	for _, l := range lines {
		g, ok := groups[l.PromotionIDs]
		if !ok {
			g = &group{orders: make(map[string]struct{}), revenue: decimal.Zero}
			groups[l.PromotionIDs] = g
		}
		g.orders[l.OrderID] = struct{}{}
		if l.Amount.Valid {
			g.revenue = g.revenue.Add(l.Amount.Decimal)
		}
		if l.Qty.Valid {
			g.units += l.Qty.Int64
		}
	}

	all := make([]domain.PromotionStats, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		g := groups[id]
		orders := len(g.orders)
		all = append(all, domain.PromotionStats{
			PromotionID:      id,
			OrderCount:       orders,
			TotalRevenue:     g.revenue,
			TotalUnits:       g.units,
			AvgOrderValue:    safeDecimalRatio(g.revenue, int64(orders)),
			AvgUnitsPerOrder: safeRatio(float64(g.units), float64(orders)),
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalRevenue.GreaterThan(all[j].TotalRevenue)
	})

	report := domain.PromotionReport{
		All:          all,
		TopByRevenue: head(all, TopN),
	}
	if len(all) == 0 {
		return report
	}
	report.BestPromotion = &all[0]
	report.HighestAOV = argmax(all, func(p domain.PromotionStats) float64 { return p.AvgOrderValue.InexactFloat64() })
	report.HighestUnitsPerOrder = argmax(all, func(p domain.PromotionStats) float64 { return p.AvgUnitsPerOrder })
	return report
}
