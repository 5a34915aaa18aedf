package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Source column names of the order-line export
const (
	ColumnOrderID          = "Order ID"
	ColumnDate             = "Date"
	ColumnAmount           = "Amount"
	ColumnQty              = "Qty"
	ColumnCategory         = "Category"
	ColumnShipState        = "ship-state"
	ColumnShipCity         = "ship-city"
	ColumnShipPostalCode   = "ship-postal-code"
	ColumnStatus           = "Status"
	ColumnFulfilledBy      = "fulfilled-by"
	ColumnShipServiceLevel = "ship-service-level"
	ColumnPromotionIDs     = "promotion-ids"
	ColumnB2B              = "B2B"
)

// Placeholder values written by the normalizer for missing fields
const (
	UnknownPostalCode = "Unknown"
	NoPromotion       = "No Promotion"
	StatusCancelled   = "Cancelled"
)

// AllValues disables the category or region filter
const AllValues = "All"

// RawRow is one untyped row as produced by a record loader, keyed by column name.
type RawRow map[string]string

// OrderLine is one normalized row of the dataset. An order may span several lines.
type OrderLine struct {
	OrderID          string              `json:"order_id"`
	Date             time.Time           `json:"date"`
	Amount           decimal.NullDecimal `json:"amount"`
	Qty              sql.NullInt64       `json:"qty"`
	Category         string              `json:"category"`
	ShipState        string              `json:"ship_state"`
	ShipCity         string              `json:"ship_city"`
	ShipPostalCode   string              `json:"ship_postal_code"`
	Status           string              `json:"status"`
	FulfilledBy      string              `json:"fulfilled_by"`
	ShipServiceLevel string              `json:"ship_service_level"`
	PromotionIDs     string              `json:"promotion_ids"`
	B2B              bool                `json:"b2b"`
}

// HasPromotion reports whether a promotion was applied to the line
func (l OrderLine) HasPromotion() bool {
	return l.PromotionIDs != NoPromotion
}

// IsCancelled reports whether the line carries the cancelled status
func (l OrderLine) IsCancelled() bool {
	return l.Status == StatusCancelled
}

// NormalizeReport counts the row-level issues absorbed during normalization.
type NormalizeReport struct {
	RowsRead     int `json:"rows_read"`
	RowsKept     int `json:"rows_kept"`
	SkippedDates int `json:"skipped_dates"` // rows dropped because the date did not parse
	AmountMisses int `json:"amount_misses"` // rows kept with a missing amount
	QtyMisses    int `json:"qty_misses"`    // rows kept with a missing quantity
}

// Dataset is the normalized, read-only snapshot every filter runs against.
// Lines must not be modified after construction.
type Dataset struct {
	Lines   []OrderLine     `json:"-"`
	MinDate time.Time       `json:"min_date"`
	MaxDate time.Time       `json:"max_date"`
	Report  NormalizeReport `json:"report"`
}

// Len returns the number of retained lines
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Lines)
}

// Filter narrows a dataset. Zero dates fall back to the dataset span;
// Category and Region equal to AllValues or empty are ignored.
type Filter struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Category  string    `json:"category"`
	Region    string    `json:"region"`
}

// FilterOptions lists the values a presentation layer can offer as filter choices.
type FilterOptions struct {
	MinDate    time.Time `json:"min_date"`
	MaxDate    time.Time `json:"max_date"`
	Categories []string  `json:"categories"`
	Regions    []string  `json:"regions"`
}
