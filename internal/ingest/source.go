package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
)

// Table is an export read into memory: the header row and the data rows
// below it, each padded to the header's width where the format allows it.
type Table struct {
	Header  []string
	Records [][]string
}

// Source is a location an order export can be read from.
type Source interface {
	// ID identifies the source across loads, e.g. "file:data/orders.csv".
	ID() string
	// Fingerprint changes whenever the underlying content changes.
	Fingerprint(ctx context.Context) (string, error)
	// Load reads the whole export.
	Load(ctx context.Context) (*Table, error)
}

// Format is the tabular encoding of an export
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name or object key extension
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewLoadError(fmt.Sprintf("unsupported export format %q", path.Ext(name)), nil).
			WithContext("name", name)
	}
}

// NewSource builds the Source selected by cfg.Driver
func NewSource(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid source configuration", err)
	}

	switch cfg.Driver {
	case config.SourceDriverFile:
		return NewFileSource(cfg.Path, cfg.Sheet, logger)
	case config.SourceDriverS3:
		return NewS3Source(ctx, S3Options{
			Bucket:       cfg.Bucket,
			Key:          cfg.Key,
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.UsePathStyle,
			Sheet:        cfg.Sheet,
		}, logger)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unsupported source driver %q", cfg.Driver), nil)
	}
}

// WithLocation points base at raw, which is either a local path or an
// s3://bucket/key URI. The remaining settings (region, endpoint, sheet)
// are kept from base.
func WithLocation(base config.SourceConfig, raw string) (config.SourceConfig, error) {
	cfg := base
	rest, isS3 := strings.CutPrefix(raw, "s3://")
	if !isS3 {
		cfg.Driver = config.SourceDriverFile
		cfg.Path = raw
		return cfg, nil
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return cfg, apperrors.NewConfigError(fmt.Sprintf("invalid s3 location %q, want s3://bucket/key", raw), nil)
	}
	cfg.Driver = config.SourceDriverS3
	cfg.Bucket = bucket
	cfg.Key = key
	return cfg, nil
}
