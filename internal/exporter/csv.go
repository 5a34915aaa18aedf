package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes report tables as CSV files under one directory
type CSVWriter struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// NewCSVWriter creates a writer rooted at dir. Files are named
// <prefix>_<section>.csv, or <section>.csv when prefix is empty.
func NewCSVWriter(dir, prefix string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		dir:    dir,
		prefix: prefix,
		logger: logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteCSV writes one file and returns its full path
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(w.dir, w.fileName(name))
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := writeCSV(file, options); err != nil {
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}

	w.logger.Debug("csv written",
		slog.String("path", fullPath),
		slog.Int("records", len(options.Records)))
	return fullPath, file.Close()
}

// WriteTables writes one file per table in order
func (w *CSVWriter) WriteTables(tables []Table) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path, err := w.WriteCSV(t.Name, WriteOptions{
			Headers:   t.Headers,
			Records:   t.Records,
			BOMPrefix: true,
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *CSVWriter) fileName(name string) string {
	if w.prefix == "" {
		return name + ".csv"
	}
	return w.prefix + "_" + name + ".csv"
}

// WriteTableCSV streams a single table to out with a BOM
func WriteTableCSV(out io.Writer, t Table) error {
	return writeCSV(out, WriteOptions{Headers: t.Headers, Records: t.Records, BOMPrefix: true})
}

func writeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
