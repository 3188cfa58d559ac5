package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/record"
)

// DateLayout is the ISO-8601 calendar date format used for cutoffs.
const DateLayout = "2006-01-02"

// record dates are read more leniently than cutoffs; time parts are discarded
var recordDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Today returns the current local calendar date as UTC midnight.
func Today() time.Time {
	return civil(time.Now())
}

// civil drops the time of day and location, keeping the calendar date as written.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordDate reads the record's date field as a calendar date.
func RecordDate(r record.Record) (time.Time, bool) {
	raw, ok := r.Date()
	if !ok {
		return time.Time{}, false
	}
	raw = strings.TrimSpace(raw)
	for _, l := range recordDateLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return civil(t), true
		}
	}
	return time.Time{}, false
}

// FilterByCutoff keeps records dated on or before cutoff. Records without a
// parseable date are dropped. Source order is preserved.
func FilterByCutoff(records []record.Record, cutoff time.Time) []record.Record {
	limit := civil(cutoff)
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		d, ok := RecordDate(r)
		if !ok || d.After(limit) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DateSpan returns the earliest and latest parseable record dates.
func DateSpan(records []record.Record) (first, last time.Time, ok bool) {
	for _, r := range records {
		d, valid := RecordDate(r)
		if !valid {
			continue
		}
		if !ok || d.Before(first) {
			first = d
		}
		if !ok || d.After(last) {
			last = d
		}
		ok = true
	}
	return first, last, ok
}
