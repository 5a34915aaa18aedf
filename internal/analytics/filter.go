package analytics

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

// Apply returns the lines of ds matching f. The date range is inclusive on
// both ends and falls back to the dataset span when a bound is zero.
// The dataset itself is never modified.
func Apply(ds *domain.Dataset, f domain.Filter) []domain.OrderLine {
	out := []domain.OrderLine{}
	if ds.Len() == 0 {
		return out
	}

	start := calendarDate(f.StartDate)
	if f.StartDate.IsZero() {
		start = calendarDate(ds.MinDate)
	}
	end := calendarDate(f.EndDate)
	if f.EndDate.IsZero() {
		end = calendarDate(ds.MaxDate)
	}

	for _, line := range ds.Lines {
		d := calendarDate(line.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		if active(f.Category) && line.Category != f.Category {
			continue
		}
		if active(f.Region) && line.ShipState != f.Region {
			continue
		}
		out = append(out, line)
	}
	return out
}

// FilterOptions lists the date span and the category and region choices of ds.
// Choices keep first-appearance order and start with domain.AllValues.
func FilterOptions(ds *domain.Dataset) domain.FilterOptions {
	opts := domain.FilterOptions{
		Categories: []string{domain.AllValues},
		Regions:    []string{domain.AllValues},
	}
	if ds.Len() == 0 {
		return opts
	}
	opts.MinDate = ds.MinDate
	opts.MaxDate = ds.MaxDate

	seenCategory := make(map[string]bool)
	seenRegion := make(map[string]bool)
	for _, line := range ds.Lines {
		if !seenCategory[line.Category] {
			seenCategory[line.Category] = true
			opts.Categories = append(opts.Categories, line.Category)
		}
		if !seenRegion[line.ShipState] {
			seenRegion[line.ShipState] = true
			opts.Regions = append(opts.Regions, line.ShipState)
		}
	}
	return opts
}

func active(v string) bool {
	return v != "" && v != domain.AllValues
}

// calendarDate drops the time of day and location
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
