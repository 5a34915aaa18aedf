package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func TestComputeTrend_MonthOverMonth(t *testing.T) {
	tests := []struct {
		name        string
		lines       []domain.OrderLine
		wantMonths  []string
		wantGrowth  []*float64
		wantAverage *float64
		wantLast    *float64
		wantBest    string
	}{
		{
			name: "two months",
			lines: []domain.OrderLine{
				line("O1", "2022-01-05", "400", qty(1)),
				line("O2", "2022-01-20", "600", qty(1)),
				line("O3", "2022-02-03", "1500", qty(1)),
			},
			wantMonths:  []string{"2022-01", "2022-02"},
			wantGrowth:  []*float64{nil, ptr(50)},
			wantAverage: ptr(50),
			wantLast:    ptr(50),
			wantBest:    "2022-02",
		},
		{
			name: "single month has no growth",
			lines: []domain.OrderLine{
				line("O1", "2022-03-01", "100", qty(1)),
				line("O2", "2022-03-31", "100", qty(1)),
			},
			wantMonths: []string{"2022-03"},
			wantGrowth: []*float64{nil},
			wantBest:   "2022-03",
		},
		{
			name: "zero month leaves the next growth undefined",
			lines: []domain.OrderLine{
				line("O1", "2022-01-05", "", qty(1)),
				line("O2", "2022-02-05", "100", qty(1)),
				line("O3", "2022-03-05", "150", qty(1)),
			},
			wantMonths:  []string{"2022-01", "2022-02", "2022-03"},
			wantGrowth:  []*float64{nil, nil, ptr(50)},
			wantAverage: ptr(50),
			wantLast:    ptr(50),
			wantBest:    "2022-03",
		},
		{
			name: "growth averages across years and ties pick the first month",
			lines: []domain.OrderLine{
				line("O1", "2021-12-05", "200", qty(1)),
				line("O2", "2022-01-05", "100", qty(1)),
				line("O3", "2022-02-05", "200", qty(1)),
			},
			wantMonths:  []string{"2021-12", "2022-01", "2022-02"},
			wantGrowth:  []*float64{nil, ptr(-50), ptr(100)},
			wantAverage: ptr(25),
			wantLast:    ptr(100),
			wantBest:    "2021-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTrend(tt.lines)

			months := make([]string, 0, len(got.Monthly))
			for _, m := range got.Monthly {
				months = append(months, m.Month)
			}
			assert.Equal(t, tt.wantMonths, months)

			require.Len(t, got.MoMGrowth, len(tt.wantGrowth))
			for i, want := range tt.wantGrowth {
				if want == nil {
					assert.Nil(t, got.MoMGrowth[i], "month %d", i)
					continue
				}
				require.NotNil(t, got.MoMGrowth[i], "month %d", i)
				assert.InDelta(t, *want, *got.MoMGrowth[i], 1e-9)
			}
			assert.Len(t, got.GrowthSeries(), len(got.Monthly)-1)

			assertOptional(t, tt.wantAverage, got.AverageMonthlyGrowth)
			assertOptional(t, tt.wantLast, got.LastMonthGrowth)

			require.NotNil(t, got.BestMonth)
			assert.Equal(t, tt.wantBest, got.BestMonth.Month)
		})
	}
}

func TestComputeTrend_Daily(t *testing.T) {
	lines := []domain.OrderLine{
		line("O3", "2022-04-02", "5", qty(1)),
		line("O1", "2022-04-01", "10", qty(1)),
		line("O1", "2022-04-01", "15", qty(1)),
		line("O2", "2022-04-01", "", qty(1)),
	}

	got := ComputeTrend(lines)

	require.Len(t, got.Daily, 2)
	assert.Equal(t, day("2022-04-01"), got.Daily[0].Date)
	assertDecimal(t, "25", got.Daily[0].Sales)
	assert.Equal(t, 2, got.Daily[0].Orders)
	assert.Equal(t, day("2022-04-02"), got.Daily[1].Date)
	assert.Equal(t, 1, got.Daily[1].Orders)
}

func TestComputeTrend_Empty(t *testing.T) {
	got := ComputeTrend(nil)

	assert.Empty(t, got.Daily)
	assert.Empty(t, got.Monthly)
	assert.Empty(t, got.MoMGrowth)
	assert.Empty(t, got.GrowthSeries())
	assert.Nil(t, got.AverageMonthlyGrowth)
	assert.Nil(t, got.LastMonthGrowth)
	assert.Nil(t, got.BestMonth)
}

func assertOptional(t *testing.T, want, got *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	if assert.NotNil(t, got) {
		assert.InDelta(t, *want, *got, 1e-9)
	}
}
