package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Format selects the report output
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", s))
	}
}

// ContentType returns the media type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// ReportExporter writes analytics reports to disk
type ReportExporter struct {
	logger *slog.Logger
}

// NewReportExporter creates an exporter
func NewReportExporter(logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Export writes report in format and returns the files created. For json
// and xlsx out is the target file; for csv it is a directory that receives
// one report_<section>.csv per section.
func (e *ReportExporter) Export(ctx context.Context, report domain.AnalyticsReport, format Format, out string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var paths []string
	switch format {
	case FormatCSV:
		paths, err = NewCSVWriter(out, "report", e.logger).WriteTables(Tables(report))
	case FormatXLSX:
		err = writeFile(out, func(f *os.File) error { return WriteXLSX(f, Tables(report)) })
		paths = []string{out}
	case FormatJSON:
		err = writeFile(out, func(f *os.File) error { return WriteJSON(f, report) })
		paths = []string{out}
	}
	if err != nil {
		return nil, apperrors.NewStorageError("export report", err).WithContext("format", string(format))
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("format", string(format)),
		slog.Int("files", len(paths)),
		slog.Int("lines", report.LineCount),
		slog.Duration("duration", time.Since(start)))
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
