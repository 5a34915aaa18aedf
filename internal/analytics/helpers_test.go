package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"salespulse/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func amt(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func qty(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: true}
}

// line builds a shipped, unpromoted order line; mutators adjust the rest
func line(id, date, amount string, units sql.NullInt64, mutators ...func(*domain.OrderLine)) domain.OrderLine {
	l := domain.OrderLine{
		OrderID:          id,
		Date:             day(date),
		Amount:           amt(amount),
		Qty:              units,
		Category:         "Set",
		ShipState:        "MAHARASHTRA",
		ShipCity:         "MUMBAI",
		ShipPostalCode:   "400001",
		Status:           "Shipped",
		FulfilledBy:      "Easy Ship",
		ShipServiceLevel: "Expedited",
		PromotionIDs:     domain.NoPromotion,
	}
	for _, m := range mutators {
		m(&l)
	}
	return l
}

func category(c string) func(*domain.OrderLine) {
	return func(l *domain.OrderLine) { l.Category = c }
}

func state(s string) func(*domain.OrderLine) {
	return func(l *domain.OrderLine) { l.ShipState = s }
}

func city(c string) func(*domain.OrderLine) {
	return func(l *domain.OrderLine) { l.ShipCity = c }
}

func status(s string) func(*domain.OrderLine) {
	return func(l *domain.OrderLine) { l.Status = s }
}

func promo(p string) func(*domain.OrderLine) {
	return func(l *domain.OrderLine) { l.PromotionIDs = p }
}

func b2b(l *domain.OrderLine) { l.B2B = true }

func dataset(lines ...domain.OrderLine) *domain.Dataset {
	ds := &domain.Dataset{Lines: lines}
	for i, l := range lines {
		if i == 0 || l.Date.Before(ds.MinDate) {
			ds.MinDate = l.Date
		}
		if i == 0 || l.Date.After(ds.MaxDate) {
			ds.MaxDate = l.Date
		}
	}
	return ds
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func ptr(f float64) *float64 { return &f }
