package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// OrderHeader is the column order used by the fixture writers
var OrderHeader = []string{
	domain.ColumnOrderID,
	domain.ColumnDate,
	domain.ColumnStatus,
	domain.ColumnFulfilledBy,
	domain.ColumnShipServiceLevel,
	domain.ColumnCategory,
	domain.ColumnQty,
	domain.ColumnAmount,
	domain.ColumnShipCity,
	domain.ColumnShipState,
	domain.ColumnShipPostalCode,
	domain.ColumnPromotionIDs,
	domain.ColumnB2B,
}

// OrderRow is one raw order line as it appears in an export file
type OrderRow struct {
	OrderID      string
	Date         string
	Status       string
	FulfilledBy  string
	ServiceLevel string
	Category     string
	Qty          string
	Amount       string
	City         string
	State        string
	PostalCode   string
	Promotion    string
	B2B          string
}

// Record returns the row's fields in OrderHeader order
func (r OrderRow) Record() []string {
	return []string{
		r.OrderID, r.Date, r.Status, r.FulfilledBy, r.ServiceLevel, r.Category,
		r.Qty, r.Amount, r.City, r.State, r.PostalCode, r.Promotion, r.B2B,
	}
}

// Raw returns the row keyed by column name
func (r OrderRow) Raw() domain.RawRow {
	rec := r.Record()
	row := make(domain.RawRow, len(OrderHeader))
	for i, col := range OrderHeader {
		row[col] = rec[i]
	}
	return row
}

// SampleOrders returns a small export covering two order lines per order,
// a missing amount, a bad quantity, an unparsable date and a cancellation.
// Normalized it keeps 6 of 7 rows, spans 2022-04-30..2022-06-02 and has
// orders O1, O2, O3, O4 and O6.
func SampleOrders() []OrderRow {
	return []OrderRow{
		{"O1", "04-30-22", "Shipped", "Easy Ship", "Expedited", "Set", "1", "100.00", "MUMBAI", "MAHARASHTRA", "400001", "", "False"},
		{"O2", "04-30-22", "Shipped", "Easy Ship", "Standard", "kurta", "2", "200.00", "BENGALURU", "KARNATAKA", "560001", "PROMO1", "False"},
		{"O2", "04-30-22", "Shipped", "Easy Ship", "Standard", "kurta", "1", "", "BENGALURU", "KARNATAKA", "nan", "PROMO1", "False"},
		{"O3", "05-01-22", "Cancelled", "", "Expedited", "Set", "1", "150.50", "PUNE", "MAHARASHTRA", "411001", "", "True"},
		{"O4", "05-15-22", "Shipped", "Easy Ship", "Expedited", "Western Dress", "3", "300", "CHENNAI", "TAMIL NADU", "600001", "PROMO2", "False"},
		{"O5", "2022-05-20", "Shipped", "Easy Ship", "Standard", "Set", "1", "50", "PUNE", "MAHARASHTRA", "411001", "", "False"},
		{"O6", "06-02-22", "Shipped", "Easy Ship", "Standard", "kurta", "abc", "80", "MYSORE", "KARNATAKA", "570001", "", "True"},
	}
}

// WriteOrdersCSV writes rows under OrderHeader to dir/name and returns the path
func WriteOrdersCSV(t *testing.T, dir, name string, rows []OrderRow) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(OrderHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush fixture: %v", err)
	}
	return path
}

// WriteOrdersXLSX writes rows under OrderHeader to the first sheet of dir/name
func WriteOrdersXLSX(t *testing.T, dir, name string, rows []OrderRow) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &OrderHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		rec := r.Record()
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
	return path
}
