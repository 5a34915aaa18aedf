// Package analytics turns raw e-commerce order lines into sales analytics.
//
// The package is a pure, in-memory pipeline. It never opens files; raw rows
// arrive from the ingest package and results leave as the report structs of
// pkg/contracts/domain.
//
// # Pipeline
//
//	RawRow → Normalizer → Dataset → Apply(Filter) → {ComputeMetrics, ComputeTrend, ComputeVelocity, ComputePromotions}
//
// The four engines are independent of each other and may run in any order.
// Each call recomputes its result from the filtered lines; nothing is cached
// or updated incrementally here.
//
// # Missing values
//
// Amount and quantity are nullable. A value that does not parse is kept as
// missing and skipped by every sum and mean, never counted as zero. Rows whose
// date does not parse under the month-day-year layout are dropped and counted
// in the dataset's NormalizeReport.
//
// # Empty input
//
// Every engine accepts an empty slice. Rates and averages collapse to 0,
// growth figures and superlatives to nil.
//
// # Usage
//
//	normalizer := analytics.NewNormalizer(logger)
//	ds, err := normalizer.NormalizeTable(ctx, header, records)
//	if err != nil {
//	    return err
//	}
//	lines := analytics.Apply(ds, domain.Filter{Category: "Set"})
//	metrics := analytics.ComputeMetrics(lines)
//	velocity := analytics.ComputeVelocity(lines)
package analytics
