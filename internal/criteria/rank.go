package criteria

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/seasons"
)

// RecentSpan is the trailing part of a season counted by MostRecentRatings.
const RecentSpan = 7 * 24 * time.Hour

// score is one user's standing under a criterion. support is the quantity
// compared against the floor; first is the earliest contributing judgment.
type score struct {
	userID   uuid.UUID
	username string
	value    float64
	support  int
	first    time.Time
}

type tracker struct {
	username string
	latest   time.Time
	js       []judgments.Judgment
}

// byUser groups judgments per user. Each user keeps the username of their
// latest judgment.
func byUser(js []judgments.Judgment) map[uuid.UUID]*tracker {
	users := make(map[uuid.UUID]*tracker)
	for _, j := range js {
		t, ok := users[j.UserID]
		if !ok {
			t = &tracker{}
			users[j.UserID] = t
		}
		if !j.Timestamp.Before(t.latest) {
			t.latest = j.Timestamp
			t.username = j.Username
		}
		t.js = append(t.js, j)
	}
	return users
}

func earliest(js []judgments.Judgment) time.Time {
	first := js[0].Timestamp
	for _, j := range js[1:] {
		if j.Timestamp.Before(first) {
			first = j.Timestamp
		}
	}
	return first
}

func keep(js []judgments.Judgment, fn func(judgments.Judgment) bool) []judgments.Judgment {
	out := make([]judgments.Judgment, 0, len(js))
	for _, j := range js {
		if fn(j) {
			out = append(out, j)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// countOf scores a user by how many of their judgments satisfy fn.
func countOf(fn func(judgments.Judgment) bool) func([]judgments.Judgment) (float64, int, time.Time, bool) {
	return func(js []judgments.Judgment) (float64, int, time.Time, bool) {
		matched := keep(js, fn)
		if len(matched) == 0 {
			return 0, 0, time.Time{}, false
		}
		return float64(len(matched)), len(matched), earliest(matched), true
	}
}

func averageGiven(js []judgments.Judgment) (float64, int, time.Time, bool) {
	numeric := keep(js, func(j judgments.Judgment) bool {
		_, ok := j.Value.Numeric()
		return ok
	})
	if len(numeric) == 0 {
		return 0, 0, time.Time{}, false
	}
	sum := 0
	for _, j := range numeric {
		n, _ := j.Value.Numeric()
		sum += n
	}
	return round2(float64(sum) / float64(len(numeric))), len(numeric), earliest(numeric), true
}

func busiestDay(js []judgments.Judgment) (float64, int, time.Time, bool) {
	if len(js) == 0 {
		return 0, 0, time.Time{}, false
	}
	days := make(map[time.Time][]judgments.Judgment)
	for _, j := range js {
		d := judgments.Day(j.Timestamp)
		days[d] = append(days[d], j)
	}

	var (
		best    time.Time
		bestLen int
	)
	for d, day := range days {
		if len(day) > bestLen || (len(day) == bestLen && d.Before(best)) {
			best, bestLen = d, len(day)
		}
	}
	return float64(bestLen), bestLen, earliest(days[best]), true
}

func activeDays(js []judgments.Judgment) (float64, int, time.Time, bool) {
	if len(js) == 0 {
		return 0, 0, time.Time{}, false
	}
	days := make(map[time.Time]struct{})
	for _, j := range js {
		days[judgments.Day(j.Timestamp)] = struct{}{}
	}
	return float64(len(days)), len(days), earliest(js), true
}

// metric returns the per-user scorer for a type. The window lets
// MostRecentRatings narrow to the season's final week.
func metric(t Type, w seasons.Window) (func([]judgments.Judgment) (float64, int, time.Time, bool), bool) {
	switch t {
	case TopRaterCount:
		return countOf(func(judgments.Judgment) bool { return true }), true
	case TopAverageGiven:
		return averageGiven, true
	case MostDenied:
		return countOf(func(j judgments.Judgment) bool { return j.Value == judgments.Deny }), true
	case MostRatingsOneDay:
		return busiestDay, true
	case MostOneRatings:
		return countOf(func(j judgments.Judgment) bool { return j.Value == judgments.One }), true
	case MostFourRatings:
		return countOf(func(j judgments.Judgment) bool { return j.Value == judgments.Four }), true
	case MostRecentRatings:
		recent := w.Final(RecentSpan)
		return countOf(func(j judgments.Judgment) bool { return recent.Contains(j.Timestamp) }), true
	case MostActiveDays:
		return activeDays, true
	}
	return nil, false
}

// Rank scores every user in js under the criterion and returns the winners.
// Only judgments inside the window count. Users whose support falls below
// MinValue are dropped. Ties on value go to the earliest contributing
// judgment, then to the lower user ID. At most AwardLimit winners return.
func Rank(c Criterion, js []judgments.Judgment, w seasons.Window) ([]Winner, error) {
	fn, ok := metric(c.Type, w)
	if !ok {
		return nil, ErrUnknownType
	}

	inWindow := keep(js, func(j judgments.Judgment) bool { return w.Contains(j.Timestamp) })

	floor := c.MinValue
	if floor <= 0 {
		floor = 1
	}

	scores := make([]score, 0)
	for id, u := range byUser(inWindow) {
		value, support, first, ok := fn(u.js)
		if !ok || float64(support) < floor {
			continue
		}
		scores = append(scores, score{
			userID:   id,
			username: u.username,
			value:    value,
			support:  support,
			first:    first,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.value != b.value {
			return a.value > b.value
		}
		if !a.first.Equal(b.first) {
			return a.first.Before(b.first)
		}
		return a.userID.String() < b.userID.String()
	})

	limit := c.AwardLimit
	if limit <= 0 {
		limit = 1
	}
	if len(scores) > limit {
		scores = scores[:limit]
	}

	winners := make([]Winner, len(scores))
	for i, s := range scores {
		winners[i] = Winner{UserID: s.userID, Username: s.username, Value: s.value}
	}
	return winners, nil
}
