package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// DateLayout is the only accepted source date layout (month-day-2digit-year).
// Go accepts both zero-padded and unpadded month and day values under it.
const DateLayout = "1-2-06"

// Normalizer converts raw order-line rows into a typed Dataset
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// NormalizeTable validates a header+records table and normalizes it.
// It fails with a LOAD error when the input is not tabular or a record is
// wider than the header. Short records keep their row.
func (n *Normalizer) NormalizeTable(ctx context.Context, header []string, records [][]string) (*domain.Dataset, error) {
	if len(header) == 0 {
		return nil, apperrors.NewLoadError("input has no header row", nil)
	}

	columns := make([]string, len(header))
	hasDate := false
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == domain.ColumnDate {
			hasDate = true
		}
	}
	if !hasDate {
		return nil, apperrors.NewLoadError("input has no Date column", nil).
			WithContext("header", columns)
	}

	rows := make([]domain.RawRow, 0, len(records))
	for i, rec := range records {
		if len(rec) > len(columns) {
			return nil, apperrors.NewLoadError(
				fmt.Sprintf("record %d has %d fields, header has %d", i+1, len(rec), len(columns)), nil)
		}
		// missing trailing fields read as empty
		row := make(domain.RawRow, len(columns))
		for j, col := range columns {
			if j < len(rec) {
				row[col] = rec[j]
			}
		}
		rows = append(rows, row)
	}

	return n.Normalize(ctx, rows)
}

// Normalize converts raw rows into order lines. Row-level problems never fail
// the call: unparsable dates drop the row, bad numerics become missing values.
func (n *Normalizer) Normalize(ctx context.Context, rows []domain.RawRow) (*domain.Dataset, error) {
	if rows == nil {
		return nil, apperrors.NewLoadError("input is not tabular", nil)
	}

	ds := &domain.Dataset{
		Lines: make([]domain.OrderLine, 0, len(rows)),
	}
	ds.Report.RowsRead = len(rows)

	for _, raw := range rows {
		date, ok := parseDate(raw[domain.ColumnDate])
		if !ok {
			ds.Report.SkippedDates++
			continue
		}

		line := domain.OrderLine{
			OrderID:          raw[domain.ColumnOrderID],
			Date:             date,
			Amount:           parseAmount(raw[domain.ColumnAmount]),
			Qty:              parseQty(raw[domain.ColumnQty]),
			Category:         raw[domain.ColumnCategory],
			ShipState:        raw[domain.ColumnShipState],
			ShipCity:         raw[domain.ColumnShipCity],
			ShipPostalCode:   orDefault(raw[domain.ColumnShipPostalCode], domain.UnknownPostalCode),
			Status:           raw[domain.ColumnStatus],
			FulfilledBy:      raw[domain.ColumnFulfilledBy],
			ShipServiceLevel: raw[domain.ColumnShipServiceLevel],
			PromotionIDs:     orDefault(raw[domain.ColumnPromotionIDs], domain.NoPromotion),
			B2B:              parseBool(raw[domain.ColumnB2B]),
		}
		if !line.Amount.Valid {
			ds.Report.AmountMisses++
		}
		if !line.Qty.Valid {
			ds.Report.QtyMisses++
		}

		if len(ds.Lines) == 0 || date.Before(ds.MinDate) {
			ds.MinDate = date
		}
		if len(ds.Lines) == 0 || date.After(ds.MaxDate) {
			ds.MaxDate = date
		}
		ds.Lines = append(ds.Lines, line)
	}
	ds.Report.RowsKept = len(ds.Lines)

	if ds.Report.SkippedDates > 0 {
		n.logger.WarnContext(ctx, "dropped rows with unparsable dates",
			slog.Int("skipped", ds.Report.SkippedDates),
			slog.Int("rows_read", ds.Report.RowsRead),
			slog.String("layout", DateLayout),
		)
	}
	n.logger.InfoContext(ctx, "normalized order lines",
		slog.Int("rows_kept", ds.Report.RowsKept),
		slog.Int("amount_misses", ds.Report.AmountMisses),
		slog.Int("qty_misses", ds.Report.QtyMisses),
	)

	return ds, nil
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseAmount(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parseQty accepts integers and whole-number floats such as "2.0"
func parseQty(s string) sql.NullInt64 {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return sql.NullInt64{}
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sql.NullInt64{Int64: v, Valid: true}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f), Valid: true}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}

func orDefault(s, fallback string) string {
	if isMissing(strings.TrimSpace(s)) {
		return fallback
	}
	return s
}

// isMissing matches the blank and NaN tokens spreadsheet exports write for empty cells
func isMissing(s string) bool {
	return s == "" || strings.EqualFold(s, "nan")
}
