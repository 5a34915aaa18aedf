package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/middleware"
	"salespulse/pkg/contracts/domain"
)

// AnalyticsService is what the analytics handler needs from the service layer
type AnalyticsService interface {
	Options(ctx context.Context) (domain.FilterOptions, error)
	Report(ctx context.Context, f domain.Filter) (domain.AnalyticsReport, error)
	Metrics(ctx context.Context, f domain.Filter) (domain.MetricsReport, error)
	Trend(ctx context.Context, f domain.Filter) (domain.TrendReport, error)
	Velocity(ctx context.Context, f domain.Filter) (domain.VelocityReport, error)
	Promotions(ctx context.Context, f domain.Filter) (domain.PromotionReport, error)
}

// FilterQuery is the filter as it arrives in the query string
type FilterQuery struct {
	Start    string `query:"start" validate:"omitempty,isodate"`
	End      string `query:"end" validate:"omitempty,isodate,dategtefield=Start"`
	Category string `query:"category" validate:"omitempty,max=128"`
	Region   string `query:"region" validate:"omitempty,max=128"`
}

// ExportQuery selects the download format and, for csv, the section
type ExportQuery struct {
	Format  string `query:"format" validate:"omitempty,oneof=json csv xlsx JSON CSV XLSX"`
	Section string `query:"section" validate:"omitempty,max=64"`
}

// AnalyticsHandler serves the engine results over HTTP
type AnalyticsHandler struct {
	service      AnalyticsService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsService, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		logger:       logger.With(slog.String("handler", "analytics")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", h.GetOptions)
		r.Get("/report", h.GetReport)
		r.Get("/metrics", h.GetMetrics)
		r.Get("/trend", h.GetTrend)
		r.Get("/velocity", h.GetVelocity)
		r.Get("/promotions", h.GetPromotions)
	})
	r.Get("/export", h.Export)

	return r
}

// GetOptions handles GET /api/analytics/options
func (h *AnalyticsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// GetReport handles GET /api/analytics/report
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	serveSection(h, w, r, h.service.Report)
}

// GetMetrics handles GET /api/analytics/metrics
func (h *AnalyticsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	serveSection(h, w, r, h.service.Metrics)
}

// GetTrend handles GET /api/analytics/trend
func (h *AnalyticsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	serveSection(h, w, r, h.service.Trend)
}

// GetVelocity handles GET /api/analytics/velocity
func (h *AnalyticsHandler) GetVelocity(w http.ResponseWriter, r *http.Request) {
	serveSection(h, w, r, h.service.Velocity)
}

// GetPromotions handles GET /api/analytics/promotions
func (h *AnalyticsHandler) GetPromotions(w http.ResponseWriter, r *http.Request) {
	serveSection(h, w, r, h.service.Promotions)
}

// Export handles GET /api/analytics/export. json returns the full report,
// xlsx a workbook with one sheet per section, csv the single section named
// by the section parameter (summary by default).
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eq := ExportQuery{Format: q.Get("format"), Section: q.Get("section")}
	if err := h.validator.ValidateStruct(eq); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if eq.Format == "" {
		eq.Format = string(exporter.FormatJSON)
	}
	format, err := exporter.ParseFormat(eq.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	f, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := h.service.Report(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := "salespulse_report." + string(format)
	var table exporter.Table
	if format == exporter.FormatCSV {
		section := eq.Section
		if section == "" {
			section = exporter.SectionSummary
		}
		found := false
		for _, t := range exporter.Tables(report) {
			if t.Name == section {
				table, found = t, true
				break
			}
		}
		if !found {
			h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError(fmt.Sprintf("section %q", section)))
			return
		}
		filename = "salespulse_" + section + ".csv"
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case exporter.FormatCSV:
		err = exporter.WriteTableCSV(w, table)
	case exporter.FormatXLSX:
		err = exporter.WriteXLSX(w, exporter.Tables(report))
	default:
		err = exporter.WriteJSON(w, report)
	}
	if err != nil {
		// headers are gone; all we can do is log
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// serveSection parses the filter, runs compute and renders the result
func serveSection[T any](h *AnalyticsHandler, w http.ResponseWriter, r *http.Request, compute func(context.Context, domain.Filter) (T, error)) {
	f, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := compute(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *AnalyticsHandler) parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	fq := FilterQuery{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Category: q.Get("category"),
		Region:   q.Get("region"),
	}
	if err := h.validator.ValidateStruct(fq); err != nil {
		return domain.Filter{}, err
	}

	f := domain.Filter{Category: fq.Category, Region: fq.Region}
	if fq.Start != "" {
		start, err := time.Parse(middleware.QueryDateLayout, fq.Start)
		if err != nil {
			return domain.Filter{}, apperrors.InvalidParameter("start", err)
		}
		f.StartDate = start
	}
	if fq.End != "" {
		end, err := time.Parse(middleware.QueryDateLayout, fq.End)
		if err != nil {
			return domain.Filter{}, apperrors.InvalidParameter("end", err)
		}
		f.EndDate = end
	}
	return f, nil
}
