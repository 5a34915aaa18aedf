package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"salespulse/internal/analytics"
	"salespulse/internal/infrastructure"
	"salespulse/internal/ingest"
	"salespulse/pkg/contracts/domain"
)

// AnalyticsService serves analytics over the export behind one Source. The
// normalized dataset is cached per source ID until the source fingerprint
// changes; concurrent loads of the same fingerprint share one read.
type AnalyticsService struct {
	source     ingest.Source
	normalizer *analytics.Normalizer
	tracer     trace.Tracer
	metrics    *infrastructure.AnalyticsMetrics
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	cache   map[string]*cachedDataset
	group   singleflight.Group
	loadSeq atomic.Uint64
}

type cachedDataset struct {
	fingerprint string
	dataset     *domain.Dataset
	loadedAt    time.Time
	seq         uint64
}

// DatasetStatus describes the cached dataset for health reporting
type DatasetStatus struct {
	SourceID    string    `json:"source_id"`
	Loaded      bool      `json:"loaded"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	Lines       int       `json:"lines"`
	MinDate     time.Time `json:"min_date,omitempty"`
	MaxDate     time.Time `json:"max_date,omitempty"`
}

// AnalyticsOption customizes an AnalyticsService
type AnalyticsOption func(*AnalyticsService)

// WithTracer sets the tracer used for load and compute spans
func WithTracer(tracer trace.Tracer) AnalyticsOption {
	return func(s *AnalyticsService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments the service records into
func WithMetrics(metrics *infrastructure.AnalyticsMetrics) AnalyticsOption {
	return func(s *AnalyticsService) { s.metrics = metrics }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAnalyticsService creates the service for source
func NewAnalyticsService(source ingest.Source, logger *slog.Logger, opts ...AnalyticsOption) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &AnalyticsService{
		source:     source,
		normalizer: analytics.NewNormalizer(logger),
		tracer:     otel.Tracer(infrastructure.InstrumentationName),
		logger:     logger.With(slog.String("component", "analytics_service")),
		now:        time.Now,
		cache:      make(map[string]*cachedDataset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dataset returns the normalized dataset, reloading it when the source
// fingerprint no longer matches the cached one.
func (s *AnalyticsService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.dataset",
		trace.WithAttributes(attribute.String("source.id", s.source.ID())))
	defer span.End()

	fingerprint, err := s.source.Fingerprint(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("fingerprint %s: %w", s.source.ID(), err)
	}

	id := s.source.ID()
	s.mu.RLock()
	entry := s.cache[id]
	s.mu.RUnlock()

	if entry != nil && entry.fingerprint == fingerprint {
		s.metrics.RecordCacheLookup(ctx, true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return entry.dataset, nil
	}
	s.metrics.RecordCacheLookup(ctx, false)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// The load outlives any single caller so one cancelled request does not
	// fail the others waiting on the same key.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(id+"@"+fingerprint, func() (interface{}, error) {
		return s.load(loadCtx, id, fingerprint)
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("load.shared", shared))
	return v.(*domain.Dataset), nil
}

func (s *AnalyticsService) load(ctx context.Context, id, fingerprint string) (*domain.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.load",
		trace.WithAttributes(
			attribute.String("source.id", id),
			attribute.String("source.fingerprint", fingerprint),
		))
	defer span.End()

	seq := s.loadSeq.Add(1)
	start := time.Now()
	ds, err := s.readAndNormalize(ctx)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordDatasetLoad(ctx, id, 0, 0, duration, err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("source", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.metrics.RecordDatasetLoad(ctx, id, ds.Report.RowsKept, ds.Report.SkippedDates, duration, nil)
	span.SetAttributes(
		attribute.Int("dataset.rows_read", ds.Report.RowsRead),
		attribute.Int("dataset.rows_kept", ds.Report.RowsKept),
	)

	// a load that started earlier must not replace a newer entry
	s.mu.Lock()
	stored := false
	if cur := s.cache[id]; cur == nil || cur.seq < seq {
		s.cache[id] = &cachedDataset{fingerprint: fingerprint, dataset: ds, loadedAt: s.now().UTC(), seq: seq}
		stored = true
	}
	s.mu.Unlock()
	if !stored {
		s.logger.WarnContext(ctx, "discarded stale dataset load",
			slog.String("source", id),
			slog.String("fingerprint", fingerprint))
		return ds, nil
	}
	infrastructure.AddSpanEvent(ctx, "dataset.cached", attribute.Int("dataset.lines", ds.Len()))

	s.logger.InfoContext(ctx, "dataset cached",
		slog.String("source", id),
		slog.String("fingerprint", fingerprint),
		slog.Int("lines", ds.Len()),
		slog.Duration("duration", duration))
	return ds, nil
}

func (s *AnalyticsService) readAndNormalize(ctx context.Context) (*domain.Dataset, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.source.ID(), err)
	}
	ds, err := s.normalizer.NormalizeTable(ctx, table.Header, table.Records)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", s.source.ID(), err)
	}
	return ds, nil
}

// Invalidate drops the cached dataset so the next call reloads it
func (s *AnalyticsService) Invalidate() {
	s.mu.Lock()
	delete(s.cache, s.source.ID())
	s.mu.Unlock()
}

// Status reports the cached dataset without triggering a load
func (s *AnalyticsService) Status() DatasetStatus {
	id := s.source.ID()
	status := DatasetStatus{SourceID: id}

	s.mu.RLock()
	entry := s.cache[id]
	s.mu.RUnlock()

	if entry == nil {
		return status
	}
	status.Loaded = true
	status.Fingerprint = entry.fingerprint
	status.LoadedAt = entry.loadedAt
	status.Lines = entry.dataset.Len()
	status.MinDate = entry.dataset.MinDate
	status.MaxDate = entry.dataset.MaxDate
	return status
}

// Ping checks that the source is reachable without reading it
func (s *AnalyticsService) Ping(ctx context.Context) error {
	if _, err := s.source.Fingerprint(ctx); err != nil {
		return fmt.Errorf("source %s unreachable: %w", s.source.ID(), err)
	}
	return nil
}

// Options lists the filter choices offered for the dataset
func (s *AnalyticsService) Options(ctx context.Context) (domain.FilterOptions, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return analytics.FilterOptions(ds), nil
}

// Report runs every engine over the filtered dataset
func (s *AnalyticsService) Report(ctx context.Context, f domain.Filter) (domain.AnalyticsReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}

	var report domain.AnalyticsReport
	s.compute(ctx, "report", func() {
		report = analytics.BuildReport(ds, f, s.now())
	})
	return report, nil
}

// Metrics computes the sales, fulfillment, geography, customer and
// efficiency breakdowns.
func (s *AnalyticsService) Metrics(ctx context.Context, f domain.Filter) (domain.MetricsReport, error) {
	lines, err := s.filtered(ctx, f)
	if err != nil {
		return domain.MetricsReport{}, err
	}
	var out domain.MetricsReport
	s.compute(ctx, "metrics", func() { out = analytics.ComputeMetrics(lines) })
	return out, nil
}

// Trend computes the daily and monthly series with growth
func (s *AnalyticsService) Trend(ctx context.Context, f domain.Filter) (domain.TrendReport, error) {
	lines, err := s.filtered(ctx, f)
	if err != nil {
		return domain.TrendReport{}, err
	}
	var out domain.TrendReport
	s.compute(ctx, "trend", func() { out = analytics.ComputeTrend(lines) })
	return out, nil
}

// Velocity scores categories by smoothed daily activity
func (s *AnalyticsService) Velocity(ctx context.Context, f domain.Filter) (domain.VelocityReport, error) {
	lines, err := s.filtered(ctx, f)
	if err != nil {
		return domain.VelocityReport{}, err
	}
	var out domain.VelocityReport
	s.compute(ctx, "velocity", func() { out = analytics.ComputeVelocity(lines) })
	return out, nil
}

// Promotions ranks promotion groups by revenue
func (s *AnalyticsService) Promotions(ctx context.Context, f domain.Filter) (domain.PromotionReport, error) {
	lines, err := s.filtered(ctx, f)
	if err != nil {
		return domain.PromotionReport{}, err
	}
	var out domain.PromotionReport
	s.compute(ctx, "promotions", func() { out = analytics.ComputePromotions(lines) })
	return out, nil
}

func (s *AnalyticsService) filtered(ctx context.Context, f domain.Filter) ([]domain.OrderLine, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	lines := analytics.Apply(ds, f)
	infrastructure.SetSpanAttributes(ctx,
		attribute.String("filter.category", f.Category),
		attribute.String("filter.region", f.Region),
		attribute.Int("filter.lines", len(lines)),
	)
	return lines, nil
}

// compute wraps one engine run in a span and a duration sample
func (s *AnalyticsService) compute(ctx context.Context, section string, fn func()) {
	ctx, span := s.tracer.Start(ctx, "analytics.compute."+section)
	defer span.End()

	start := time.Now()
	fn()
	s.metrics.RecordCompute(ctx, section, time.Since(start))
}
