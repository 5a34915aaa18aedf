package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable decodes r according to format. sheet only applies to XLSX and
// defaults to the first sheet of the workbook.
func ReadTable(r io.Reader, format Format, sheet string) (*Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r, sheet)
	default:
		return nil, apperrors.NewLoadError(fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

// ReadCSV reads a comma-separated export. A leading UTF-8 byte order mark is
// dropped. Short records are padded with empty fields to the header width;
// records wider than the header are left for the normalizer to reject.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read CSV export", err)
	}

	table, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	padRecords(table)
	return table, nil
}

// ReadXLSX reads one sheet of a workbook. Trailing empty cells, which
// excelize omits, are restored so each record matches the header width.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open XLSX export", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewLoadError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, apperrors.NewLoadError(fmt.Sprintf("sheet %q not found", sheet), err).
			WithContext("sheet", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewLoadError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	table, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}

	padRecords(table)
	return table, nil
}

// padRecords drops empty records and extends short ones with empty fields
func padRecords(table *Table) {
	width := len(table.Header)
	records := table.Records[:0]
	for _, rec := range table.Records {
		if len(rec) == 0 {
			continue
		}
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		records = append(records, rec)
	}
	table.Records = records
}

func splitHeader(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewLoadError("export is empty", nil)
	}
	return &Table{Header: rows[0], Records: rows[1:]}, nil
}
