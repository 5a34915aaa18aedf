// Package exporter writes analytics reports for offline use.
//
// A report is flattened by Tables into named sections (summary, category
// sales, status, daily and monthly series, velocity, promotions and so on).
// The sections are then written as:
//
//   - CSV: one UTF-8 file with BOM per section, via CSVWriter
//   - XLSX: one worksheet per section in a single workbook, via WriteXLSX
//   - JSON: the full report document, via WriteJSON
//
// Money is written with two decimals. Undefined growth values are blank.
//
// Example usage:
//
//	exp := exporter.NewReportExporter(logger)
//	paths, err := exp.Export(ctx, report, exporter.FormatXLSX, "out/report.xlsx")
package exporter
