// Package seasons maps named seasons to UTC time windows.
// Spring, summer, and fall fall inside one calendar year; winter starts on
// December 21 and runs into March of the following year.
package seasons

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

// Season names a quarter of the award calendar.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// ErrInvalidSeason indicates an unknown season name or an out-of-range year.
var ErrInvalidSeason = fmt.Errorf("%w: invalid season", faults.ErrValidation)

// All lists the seasons in calendar order starting with spring.
var All = []Season{Spring, Summer, Fall, Winter}

type boundary struct {
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

var calendar = map[Season]boundary{
	Spring: {time.March, 21, time.June, 20},
	Summer: {time.June, 21, time.September, 20},
	Fall:   {time.September, 21, time.December, 20},
	Winter: {time.December, 21, time.March, 20},
}

// Compare orders seasons of the same year by calendar position.
func Compare(a, b Season) int {
	return slices.Index(All, a) - slices.Index(All, b)
}

// Parse normalizes a season name. Matching is case-insensitive.
func Parse(s string) (Season, error) {
	season := Season(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := calendar[season]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	return season, nil
}

// UnmarshalJSON accepts any casing of a known season name.
func (s *Season) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Window is an inclusive UTC time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Final returns the trailing window of the given length that ends with w.
func (w Window) Final(d time.Duration) Window {
	start := w.End.Add(-d)
	if start.Before(w.Start) {
		start = w.Start
	}
	return Window{Start: start, End: w.End}
}

// Resolver maps a season and year to its time window.
type Resolver func(season Season, year int) (Window, error)

// Calendar is the default Resolver. The window starts at midnight UTC of the
// first day and ends at the last instant of the final day.
func Calendar(season Season, year int) (Window, error) {
	b, ok := calendar[season]
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}
	if year < 1 || year > 9998 {
		return Window{}, fmt.Errorf("%w: year %d", ErrInvalidSeason, year)
	}

	endYear := year
	if season == Winter {
		endYear = year + 1
	}

	start := time.Date(year, b.startMonth, b.startDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, b.endMonth, b.endDay, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, 1).
		Add(-time.Nanosecond)

	return Window{Start: start, End: end}, nil
}

// Current returns the season containing t and the year the season started in.
// January 1 through March 20 belong to the previous year's winter.
func Current(t time.Time) (Season, int) {
	t = t.UTC()
	year := t.Year()

	for _, s := range All {
		w, _ := Calendar(s, year)
		if w.Contains(t) {
			return s, year
		}
	}
	return Winter, year - 1
}
