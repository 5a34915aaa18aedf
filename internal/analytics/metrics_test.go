package analytics

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestComputeMetrics_SalesPerformance(t *testing.T) {
	tests := []struct {
		name       string
		lines      []domain.OrderLine
		wantSales  string
		wantOrders int
		wantAOV    string
		wantUnits  int64
	}{
		{
			name: "missing amount on a repeated order",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "100", qty(1)),
				line("O2", "2022-04-30", "200", qty(1)),
				line("O2", "2022-04-30", "", qty(1)),
			},
			wantSales:  "300",
			wantOrders: 2,
			wantAOV:    "150",
			wantUnits:  3,
		},
		{
			name: "missing amount on its own order still counts the order",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "100", qty(1)),
				line("O2", "2022-04-30", "200", qty(1)),
				line("O3", "2022-04-30", "", qty(1)),
			},
			wantSales:  "300",
			wantOrders: 3,
			wantAOV:    "100",
			wantUnits:  3,
		},
		{
			name: "missing quantity is skipped not zeroed",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "10.25", qty(2)),
				line("O1", "2022-04-30", "5.25", sql.NullInt64{}),
			},
			wantSales:  "15.5",
			wantOrders: 1,
			wantAOV:    "15.5",
			wantUnits:  2,
		},
		{
			name:       "empty input",
			lines:      []domain.OrderLine{},
			wantSales:  "0",
			wantOrders: 0,
			wantAOV:    "0",
			wantUnits:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMetrics(tt.lines).Sales

			assertDecimal(t, tt.wantSales, got.TotalSales)
			assert.Equal(t, tt.wantOrders, got.TotalOrders)
			assertDecimal(t, tt.wantAOV, got.AverageOrderValue)
			assert.Equal(t, tt.wantUnits, got.TotalUnits)
		})
	}
}

func TestComputeMetrics_AOVTimesOrdersMatchesSales(t *testing.T) {
	lines := []domain.OrderLine{
		line("O1", "2022-04-30", "100", qty(1)),
		line("O2", "2022-04-30", "100", qty(1)),
		line("O3", "2022-04-30", "133.33", qty(1)),
	}

	sales := ComputeMetrics(lines).Sales
	product := sales.AverageOrderValue.Mul(decimal.NewFromInt(int64(sales.TotalOrders)))

	assert.True(t, product.Sub(sales.TotalSales).Abs().LessThan(decimal.RequireFromString("0.000001")))
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)

	assert.Equal(t, 0, m.Sales.TotalOrders)
	assert.True(t, m.Sales.AverageOrderValue.IsZero())
	assert.Empty(t, m.Sales.CategorySales)
	assert.Empty(t, m.Fulfillment.StatusDistribution)
	assert.Empty(t, m.Geography.StateSales)
	assert.Empty(t, m.Customer.OrderSizeDistribution)
	assert.Equal(t, domain.OperationalEfficiency{}, m.Efficiency)
}

func TestComputeMetrics_Efficiency(t *testing.T) {
	tests := []struct {
		name          string
		lines         []domain.OrderLine
		wantCancel    float64
		wantPromotion float64
		wantUnits     float64
	}{
		{
			name: "rates count distinct orders",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "10", qty(1), status("Cancelled")),
				line("O1", "2022-04-30", "10", qty(3), status("Cancelled")),
				line("O2", "2022-04-30", "10", qty(2), promo("P1")),
				line("O3", "2022-04-30", "10", sql.NullInt64{}),
				line("O4", "2022-04-30", "10", qty(2), promo("P1")),
			},
			wantCancel:    25,
			wantPromotion: 50,
			wantUnits:     2,
		},
		{
			name: "every order cancelled and promoted",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "10", qty(1), status("Cancelled"), promo("P1")),
			},
			wantCancel:    100,
			wantPromotion: 100,
			wantUnits:     1,
		},
		{
			name: "all quantities missing",
			lines: []domain.OrderLine{
				line("O1", "2022-04-30", "10", sql.NullInt64{}),
			},
			wantUnits: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMetrics(tt.lines).Efficiency

			assert.InDelta(t, tt.wantCancel, got.CancellationRate, 1e-9)
			assert.InDelta(t, tt.wantPromotion, got.PromotionUsageRate, 1e-9)
			assert.InDelta(t, tt.wantUnits, got.AvgUnitsPerOrder, 1e-9)

			for _, rate := range []float64{got.CancellationRate, got.PromotionUsageRate} {
				assert.GreaterOrEqual(t, rate, 0.0)
				assert.LessOrEqual(t, rate, 100.0)
			}
		})
	}
}

func TestComputeMetrics_Distributions(t *testing.T) {
	lines := []domain.OrderLine{
		line("O1", "2022-04-30", "10", qty(1), category("kurta"), status("Shipped")),
		line("O2", "2022-04-30", "20", qty(4), category("Set"), status("Pending")),
		line("O3", "2022-04-30", "30", qty(2), category("kurta"), status("Cancelled"), b2b),
		line("O4", "2022-04-30", "", sql.NullInt64{}, category("Set"), status("Shipped")),
	}

	m := ComputeMetrics(lines)

	require.Len(t, m.Sales.CategorySales, 2)
	assert.Equal(t, "Set", m.Sales.CategorySales[0].Key)
	assertDecimal(t, "20", m.Sales.CategorySales[0].Amount)
	assert.Equal(t, "kurta", m.Sales.CategorySales[1].Key)
	assertDecimal(t, "40", m.Sales.CategorySales[1].Amount)

	assert.Equal(t, []domain.KeyCount{
		{Key: "Shipped", Count: 2},
		{Key: "Cancelled", Count: 1},
		{Key: "Pending", Count: 1},
	}, m.Fulfillment.StatusDistribution)
	assert.Equal(t, []domain.KeyCount{{Key: "Easy Ship", Count: 4}}, m.Fulfillment.FulfillmentDistribution)

	assert.Equal(t, []domain.B2BCount{
		{B2B: false, Count: 3},
		{B2B: true, Count: 1},
	}, m.Customer.B2BSplit)
	assert.Equal(t, []int64{1, 4, 2}, m.Customer.OrderSizeDistribution)
}

func TestComputeMetrics_Geography(t *testing.T) {
	var lines []domain.OrderLine
	for i := 1; i <= 12; i++ {
		st := fmt.Sprintf("S%02d", i)
		lines = append(lines, line(fmt.Sprintf("O%d", i), "2022-04-30", fmt.Sprint(i*10), qty(1), state(st), city("C"+st)))
	}
	// ties on amount and count keep lexical order
	lines = append(lines,
		line("T1", "2022-04-30", "500", qty(1), state("ZETA"), city("BETA")),
		line("T2", "2022-04-30", "500", qty(1), state("ALPHA"), city("BETA")),
		line("T3", "2022-04-30", "", qty(1), state("NONE"), city("ALPHA")),
		line("T4", "2022-04-30", "", qty(1), state("NONE"), city("ALPHA")),
	)

	geo := ComputeMetrics(lines).Geography

	require.Len(t, geo.StateSales, TopN)
	assert.Equal(t, "ALPHA", geo.StateSales[0].Key)
	assert.Equal(t, "ZETA", geo.StateSales[1].Key)
	assert.Equal(t, "S12", geo.StateSales[2].Key)
	assert.Equal(t, "S05", geo.StateSales[9].Key)

	require.Len(t, geo.CityOrderCounts, TopN)
	assert.Equal(t, domain.KeyCount{Key: "ALPHA", Count: 2}, geo.CityOrderCounts[0])
	assert.Equal(t, domain.KeyCount{Key: "BETA", Count: 2}, geo.CityOrderCounts[1])
	assert.Equal(t, "CS01", geo.CityOrderCounts[2].Key)
}
