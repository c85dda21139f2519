// Package activity turns judgment timestamps into gap-free daily series,
// globally, per user, and as an aligned breakdown across all users.
package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
)

// Point is the number of judgments made on one UTC day.
type Point struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayKey formats t as its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(judgments.DayFormat)
}

// Days lists every UTC day from from to to, both inclusive.
// It returns nil when from falls after to.
func Days(from, to time.Time) []time.Time {
	from, to = judgments.Day(from), judgments.Day(to)
	if from.After(to) {
		return nil
	}

	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Series counts timestamps per day over [from, to], emitting a zero point for
// every day without activity. Timestamps outside the range are ignored.
func Series(timestamps []time.Time, from, to time.Time) []Point {
	counts := make(map[string]int, len(timestamps))
	for _, t := range timestamps {
		counts[DayKey(t)]++
	}

	days := Days(from, to)
	points := make([]Point, len(days))
	for i, d := range days {
		key := DayKey(d)
		points[i] = Point{Date: key, Count: counts[key]}
	}
	return points
}

// Span resolves the day range of a series. Explicit bounds win; a missing
// bound comes from the earliest or latest judgment. It reports false when a
// bound is missing and there are no judgments to infer it from.
func Span(js []judgments.Judgment, r judgments.Range) (from, to time.Time, ok bool) {
	if r.Start != nil && r.End != nil {
		return judgments.Day(*r.Start), judgments.Day(*r.End), true
	}
	if len(js) == 0 {
		return time.Time{}, time.Time{}, false
	}

	earliest, latest := js[0].Timestamp, js[0].Timestamp
	for _, j := range js[1:] {
		if j.Timestamp.Before(earliest) {
			earliest = j.Timestamp
		}
		if j.Timestamp.After(latest) {
			latest = j.Timestamp
		}
	}

	from, to = earliest, latest
	if r.Start != nil {
		from = *r.Start
	}
	if r.End != nil {
		to = *r.End
	}
	return judgments.Day(from), judgments.Day(to), true
}

// Aggregate builds the daily series for the judgments within r.
func Aggregate(js []judgments.Judgment, r judgments.Range) []Point {
	in := within(js, r)

	from, to, ok := Span(in, r)
	if !ok {
		return []Point{}
	}

	timestamps := make([]time.Time, len(in))
	for i, j := range in {
		timestamps[i] = j.Timestamp
	}
	return Series(timestamps, from, to)
}

// Breakdown builds one series per user, keyed by username. Every series spans
// the same days: the explicit range or the global earliest and latest judgment.
// A user's series is labeled with the username of their latest judgment.
func Breakdown(js []judgments.Judgment, r judgments.Range) map[string][]Point {
	in := within(js, r)

	from, to, ok := Span(in, r)
	if !ok {
		return map[string][]Point{}
	}

	type user struct {
		name       string
		latest     time.Time
		timestamps []time.Time
	}

	users := make(map[uuid.UUID]*user)
	order := make([]uuid.UUID, 0)
	for _, j := range in {
		u, seen := users[j.UserID]
		if !seen {
			u = &user{}
			users[j.UserID] = u
			order = append(order, j.UserID)
		}
		if !j.Timestamp.Before(u.latest) {
			u.latest = j.Timestamp
			u.name = j.Username
		}
		u.timestamps = append(u.timestamps, j.Timestamp)
	}

	byName := make(map[string][]time.Time, len(users))
	for _, id := range order {
		u := users[id]
		byName[u.name] = append(byName[u.name], u.timestamps...)
	}

	out := make(map[string][]Point, len(byName))
	for name, timestamps := range byName {
		out[name] = Series(timestamps, from, to)
	}
	return out
}

func within(js []judgments.Judgment, r judgments.Range) []judgments.Judgment {
	out := make([]judgments.Judgment, 0, len(js))
	for _, j := range js {
		if r.Contains(j.Timestamp) {
			out = append(out, j)
		}
	}
	return out
}
