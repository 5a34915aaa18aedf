package analytics

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

// BuildReport filters ds and runs every engine over the result
func BuildReport(ds *domain.Dataset, f domain.Filter, now time.Time) domain.AnalyticsReport {
	lines := Apply(ds, f)

	report := domain.AnalyticsReport{
		GeneratedAt: now.UTC(),
		Filter:      f,
		LineCount:   len(lines),
		Metrics:     ComputeMetrics(lines),
		Trend:       ComputeTrend(lines),
		Velocity:    ComputeVelocity(lines),
		Promotions:  ComputePromotions(lines),
	}
	if ds != nil {
		report.Normalize = ds.Report
	}
	return report
}
