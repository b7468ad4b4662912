package analytics

import (
	"time"

	"hanami-dashboard/internal/models"
)

// saleDateLayouts are the accepted sale-date formats, tried in order:
// the slash-separated day-first form, ISO, then common free-form
// fallbacks.
var saleDateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// ParseSaleDate parses a raw sale date under the accepted layouts.
func ParseSaleDate(raw string) (time.Time, bool) {
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Filter narrows a record collection by region and calendar date range
// before aggregation. Both bounds are inclusive; zero values disable the
// corresponding condition.
type Filter struct {
	Region string
	Start  time.Time
	End    time.Time
}

// Active reports whether any condition is set. The reconciliation policy
// keys every per-metric decision off this boolean.
func (f Filter) Active() bool {
	return f.Region != "" || !f.Start.IsZero() || !f.End.IsZero()
}

// Apply returns the records passing every active condition. Records with
// unparsable dates fail active date conditions only; with no date filter
// they are retained. The input slice is never mutated.
func (f Filter) Apply(records []models.SalesRecord) []models.SalesRecord {
	if !f.Active() {
		return records
	}

	// The end day is included by advancing the bound one day and
	// comparing exclusively.
	var endExclusive time.Time
	if !f.End.IsZero() {
		endExclusive = f.End.AddDate(0, 0, 1)
	}

	out := make([]models.SalesRecord, 0, len(records))
	for _, r := range records {
		if f.Region != "" && r.Regiao != f.Region {
			continue
		}
		if !f.Start.IsZero() || !endExclusive.IsZero() {
			date, ok := ParseSaleDate(r.DataVenda)
			if !ok {
				continue
			}
			if !f.Start.IsZero() && date.Before(f.Start) {
				continue
			}
			if !endExclusive.IsZero() && !date.Before(endExclusive) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
