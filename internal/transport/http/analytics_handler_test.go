package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// stubAnalytics returns canned results and remembers the last filter
type stubAnalytics struct {
	mu     sync.Mutex
	filter domain.Filter
	calls  int
	err    error
}

func (s *stubAnalytics) record(f domain.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.calls++
	return s.err
}

func (s *stubAnalytics) lastFilter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *stubAnalytics) Options(context.Context) (domain.FilterOptions, error) {
	if err := s.record(domain.Filter{}); err != nil {
		return domain.FilterOptions{}, err
	}
	return domain.FilterOptions{
		MinDate:    time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC),
		MaxDate:    time.Date(2022, 6, 29, 0, 0, 0, 0, time.UTC),
		Categories: []string{domain.AllValues, "Set", "kurta"},
		Regions:    []string{domain.AllValues, "KARNATAKA"},
	}, nil
}

func (s *stubAnalytics) Report(_ context.Context, f domain.Filter) (domain.AnalyticsReport, error) {
	if err := s.record(f); err != nil {
		return domain.AnalyticsReport{}, err
	}
	return domain.AnalyticsReport{
		Filter:    f,
		LineCount: 2,
		Metrics: domain.MetricsReport{Sales: domain.SalesPerformance{
			TotalSales:  decimal.NewFromInt(300),
			TotalOrders: 2,
		}},
		Trend: domain.TrendReport{Monthly: []domain.MonthlySales{{Month: "2022-04", Sales: decimal.NewFromInt(300)}}},
	}, nil
}

func (s *stubAnalytics) Metrics(_ context.Context, f domain.Filter) (domain.MetricsReport, error) {
	if err := s.record(f); err != nil {
		return domain.MetricsReport{}, err
	}
	return domain.MetricsReport{Sales: domain.SalesPerformance{TotalOrders: 2}}, nil
}

func (s *stubAnalytics) Trend(_ context.Context, f domain.Filter) (domain.TrendReport, error) {
	if err := s.record(f); err != nil {
		return domain.TrendReport{}, err
	}
	return domain.TrendReport{Monthly: []domain.MonthlySales{{Month: "2022-04"}}}, nil
}

func (s *stubAnalytics) Velocity(_ context.Context, f domain.Filter) (domain.VelocityReport, error) {
	if err := s.record(f); err != nil {
		return domain.VelocityReport{}, err
	}
	return domain.VelocityReport{Categories: []domain.CategoryVelocity{{Category: "kurta", Score: 1}}}, nil
}

func (s *stubAnalytics) Promotions(_ context.Context, f domain.Filter) (domain.PromotionReport, error) {
	if err := s.record(f); err != nil {
		return domain.PromotionReport{}, err
	}
	return domain.PromotionReport{All: []domain.PromotionStats{{PromotionID: "PROMO1", OrderCount: 1}}}, nil
}

func newAnalyticsServer(t *testing.T, svc AnalyticsService) *httptest.Server {
	t.Helper()
	h := NewAnalyticsHandler(svc, nil, apperrors.NewErrorHandler(nil, false))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestAnalyticsHandler_Sections(t *testing.T) {
	svc := &stubAnalytics{}
	srv := newAnalyticsServer(t, svc)

	tests := []struct {
		path string
		key  string
	}{
		{path: "/options", key: "categories"},
		{path: "/report", key: "line_count"},
		{path: "/metrics", key: "sales"},
		{path: "/trend", key: "monthly"},
		{path: "/velocity", key: "categories"},
		{path: "/promotions", key: "all"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var body map[string]interface{}
			resp := getJSON(t, srv.URL+tt.path, &body)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
			assert.Contains(t, body, tt.key)
		})
	}
	assert.Equal(t, 6, svc.calls)
}

func TestAnalyticsHandler_FilterParsing(t *testing.T) {
	svc := &stubAnalytics{}
	srv := newAnalyticsServer(t, svc)

	resp := getJSON(t, srv.URL+"/metrics?start=2022-04-01&end=2022-04-30&category=kurta&region=All", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, domain.Filter{
		StartDate: time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2022, 4, 30, 0, 0, 0, 0, time.UTC),
		Category:  "kurta",
		Region:    domain.AllValues,
	}, svc.lastFilter())

	resp = getJSON(t, srv.URL+"/trend", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Filter{}, svc.lastFilter())
}

func TestAnalyticsHandler_InvalidFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "malformed start", query: "start=04-30-22"},
		{name: "impossible date", query: "end=2022-02-30"},
		{name: "end before start", query: "start=2022-05-01&end=2022-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAnalytics{}
			srv := newAnalyticsServer(t, svc)

			var problem map[string]interface{}
			resp := getJSON(t, srv.URL+"/report?"+tt.query, &problem)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, apperrors.TypeValidation, problem["type"])
			assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
			assert.Zero(t, svc.calls)
		})
	}
}

func TestAnalyticsHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "unreadable export",
			err:        apperrors.NewLoadError("missing required column \"Amount\"", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apperrors.TypeDataLoad,
		},
		{
			name:       "missing export",
			err:        apperrors.NewNotFoundError("export"),
			wantStatus: http.StatusNotFound,
			wantType:   apperrors.TypeNotFound,
		},
		{
			name:       "bucket failure",
			err:        apperrors.NewStorageError("get object", nil),
			wantStatus: http.StatusBadGateway,
			wantType:   apperrors.TypeStorage,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apperrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAnalyticsServer(t, &stubAnalytics{err: tt.err})

			var problem map[string]interface{}
			resp := getJSON(t, srv.URL+"/velocity", &problem)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, "/velocity", problem["instance"])
		})
	}
}

func TestAnalyticsHandler_Export(t *testing.T) {
	svc := &stubAnalytics{}
	srv := newAnalyticsServer(t, svc)

	t.Run("json by default", func(t *testing.T) {
		var body map[string]interface{}
		resp := getJSON(t, srv.URL+"/export?category=kurta", &body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "salespulse_report.json")
		assert.Equal(t, float64(2), body["line_count"])
		assert.Equal(t, "kurta", svc.lastFilter().Category)
	})

	t.Run("xlsx", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/export?format=xlsx")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "monthly")
	})

	t.Run("csv section", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/export?format=csv&section=monthly")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

		var buf bytes.Buffer
		_, err = buf.ReadFrom(resp.Body)
		require.NoError(t, err)
		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"month", "sales", "mom_growth"}, {"2022-04", "300.00", ""}}, records)
	})

	t.Run("unknown section", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/export?format=csv&section=nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unsupported format", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/export?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
