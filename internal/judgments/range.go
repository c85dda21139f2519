package judgments

import (
	"fmt"
	"net/url"
	"time"
)

// DayFormat is the layout of a UTC calendar day key.
const DayFormat = "2006-01-02"

// Range filters judgments by the UTC calendar day of their timestamp.
// Both bounds are optional and inclusive of the whole day.
type Range struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Validate rejects a start day that falls after the end day.
func (r Range) Validate() error {
	if r.Start != nil && r.End != nil && Day(*r.Start).After(Day(*r.End)) {
		return ErrInvalidRange
	}
	return nil
}

// Bounds returns the half-open instant range [from, until) covering the days.
// A nil bound is unbounded.
func (r Range) Bounds() (from, until *time.Time) {
	if r.Start != nil {
		f := Day(*r.Start)
		from = &f
	}
	if r.End != nil {
		u := Day(*r.End).AddDate(0, 0, 1)
		until = &u
	}
	return from, until
}

// Contains reports whether t falls on a day within the range.
func (r Range) Contains(t time.Time) bool {
	from, until := r.Bounds()
	if from != nil && t.Before(*from) {
		return false
	}
	if until != nil && !t.Before(*until) {
		return false
	}
	return true
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD day or an RFC 3339 timestamp.
func ParseDay(s string) (time.Time, error) {
	if t, err := time.Parse(DayFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// RangeFromQuery parses optional start and end day parameters.
func RangeFromQuery(values url.Values) (Range, error) {
	var r Range

	if s := values.Get("start"); s != "" {
		t, err := ParseDay(s)
		if err != nil {
			return r, fmt.Errorf("%w: start %q", ErrInvalidDate, s)
		}
		r.Start = &t
	}

	if s := values.Get("end"); s != "" {
		t, err := ParseDay(s)
		if err != nil {
			return r, fmt.Errorf("%w: end %q", ErrInvalidDate, s)
		}
		r.End = &t
	}

	return r, r.Validate()
}
