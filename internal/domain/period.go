package domain

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange bounds records by created_at. Both ends are inclusive and
// either may be nil (open).
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange accepts RFC3339 timestamps or plain dates. A plain date
// in "to" covers the whole day.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(from); s != "" {
		t, _, err := parseBound(s)
		if err != nil {
			return DateRange{}, &ErrValidation{Field: "from", Message: "expected RFC3339 or YYYY-MM-DD"}
		}
		r.From = &t
	}
	if s := strings.TrimSpace(to); s != "" {
		t, dateOnly, err := parseBound(s)
		if err != nil {
			return DateRange{}, &ErrValidation{Field: "to", Message: "expected RFC3339 or YYYY-MM-DD"}
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return DateRange{}, &ErrValidation{Field: "to", Message: "must not be before from"}
	}
	return r, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateLayout, s)
	return t, true, err
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both ends.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// ReportPeriod is the human-readable period stored with a report snapshot.
type ReportPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Period renders the range the way the dashboard shows it.
func (r DateRange) Period() ReportPeriod {
	p := ReportPeriod{From: "Start", To: "Today"}
	if r.From != nil {
		p.From = r.From.Format(dateLayout)
	}
	if r.To != nil {
		p.To = r.To.Format(dateLayout)
	}
	return p
}
