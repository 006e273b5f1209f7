// internal/app/system/daterange/daterange.go

// Package daterange produces and parses the inclusive calendar date ranges
// that scope every data fetch in the console. Ranges are computed from the
// local calendar, not UTC: an operator in Manila at 01:00 expects "today" to
// be their today.
package daterange

import (
	"net/http"
	"time"
)

// Layout is the wire format for range endpoints (from/to query params).
const Layout = "2006-01-02"

// DefaultDays is the span of the default range, inclusive of both ends.
const DefaultDays = 7

// Range is an inclusive from/to pair of ISO calendar dates.
type Range struct {
	From string
	To   string
}

// DefaultLast7 returns the default range for "now": today minus six days
// through today, in now's location.
func DefaultLast7(now time.Time) Range {
	to := now
	from := now.AddDate(0, 0, -(DefaultDays - 1))
	return Range{
		From: from.Format(Layout),
		To:   to.Format(Layout),
	}
}

// WithDefault fills any missing end of r from the default range for now.
// Both ends are required before a scoped fetch is issued.
func (r Range) WithDefault(now time.Time) Range {
	if r.From != "" && r.To != "" {
		return r
	}
	def := DefaultLast7(now)
	if r.From == "" {
		r.From = def.From
	}
	if r.To == "" {
		r.To = def.To
	}
	return r
}

// IsComplete reports whether both ends are present.
func (r Range) IsComplete() bool {
	return r.From != "" && r.To != ""
}

// Signature returns a stable key for scope comparison (accumulator resets).
func (r Range) Signature() string {
	return r.From + ".." + r.To
}

// FromQuery reads from/to query params, dropping values that do not parse as
// calendar dates, and fills the remainder from the default range.
func FromQuery(req *http.Request, now time.Time) Range {
	r := Range{
		From: validDate(req.URL.Query().Get("from")),
		To:   validDate(req.URL.Query().Get("to")),
	}
	return r.WithDefault(now)
}

func validDate(s string) string {
	if s == "" {
		return ""
	}
	if _, err := time.Parse(Layout, s); err != nil {
		return ""
	}
	return s
}
