package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AnalyticsMetrics holds the instruments recorded by the analytics pipeline
// and its HTTP surface. All Record methods are safe on a nil receiver.
type AnalyticsMetrics struct {
	// Dataset loading
	DatasetLoads        metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	RowsSkipped         metric.Int64Counter
	LinesLoaded         metric.Int64Counter

	// Dataset cache
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	// Report computation
	ComputeDuration metric.Float64Histogram

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewAnalyticsMetrics creates the instruments on meter, or on the global
// meter provider when meter is nil.
func NewAnalyticsMetrics(meter metric.Meter) (*AnalyticsMetrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &AnalyticsMetrics{}
	var err error

	if m.DatasetLoads, err = meter.Int64Counter(
		"salespulse.dataset.loads",
		metric.WithDescription("Order exports read from the configured source"),
	); err != nil {
		return nil, fmt.Errorf("dataset loads counter: %w", err)
	}

	if m.DatasetLoadDuration, err = meter.Float64Histogram(
		"salespulse.dataset.load.duration",
		metric.WithDescription("Time spent reading and normalizing an export"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("dataset load histogram: %w", err)
	}

	if m.RowsSkipped, err = meter.Int64Counter(
		"salespulse.dataset.rows.skipped",
		metric.WithDescription("Rows dropped for unparsable dates"),
	); err != nil {
		return nil, fmt.Errorf("rows skipped counter: %w", err)
	}

	if m.LinesLoaded, err = meter.Int64Counter(
		"salespulse.dataset.lines.loaded",
		metric.WithDescription("Order lines kept after normalization"),
	); err != nil {
		return nil, fmt.Errorf("lines loaded counter: %w", err)
	}

	if m.CacheHits, err = meter.Int64Counter(
		"salespulse.cache.hits",
		metric.WithDescription("Dataset cache hits"),
	); err != nil {
		return nil, fmt.Errorf("cache hits counter: %w", err)
	}

	if m.CacheMisses, err = meter.Int64Counter(
		"salespulse.cache.misses",
		metric.WithDescription("Dataset cache misses"),
	); err != nil {
		return nil, fmt.Errorf("cache misses counter: %w", err)
	}

	if m.ComputeDuration, err = meter.Float64Histogram(
		"salespulse.compute.duration",
		metric.WithDescription("Time spent computing an analytics section"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("compute histogram: %w", err)
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http requests counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("http duration histogram: %w", err)
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("http active requests counter: %w", err)
	}

	return m, nil
}

// RecordDatasetLoad records one load attempt against source
func (m *AnalyticsMetrics) RecordDatasetLoad(ctx context.Context, source string, lines, skipped int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)

	m.DatasetLoads.Add(ctx, 1, attrs)
	m.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		return
	}

	sourceAttr := metric.WithAttributes(attribute.String("source", source))
	m.LinesLoaded.Add(ctx, int64(lines), sourceAttr)
	if skipped > 0 {
		m.RowsSkipped.Add(ctx, int64(skipped), sourceAttr)
	}
}

// RecordCacheLookup counts a dataset cache hit or miss
func (m *AnalyticsMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
		return
	}
	m.CacheMisses.Add(ctx, 1)
}

// RecordCompute records how long one report section took
func (m *AnalyticsMetrics) RecordCompute(ctx context.Context, section string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ComputeDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("section", section)))
}

// RecordHTTPRequest records a completed request against its route pattern
func (m *AnalyticsMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// AddActiveRequests adjusts the in-flight request gauge
func (m *AnalyticsMetrics) AddActiveRequests(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}
