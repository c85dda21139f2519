// Package tally derives per-clip rating counts, the numeric average, and the
// denial classification from a clip's judgments.
package tally

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/faults"
)

// ErrInvalidThreshold indicates a deny threshold below one.
var ErrInvalidThreshold = fmt.Errorf("%w: deny threshold must be at least 1", faults.ErrValidation)

// Rater identifies a user counted in a rating category.
type Rater struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Count is one rating category with the users who chose it.
type Count struct {
	Value judgments.Value `json:"value"`
	Count int             `json:"count"`
	Users []Rater         `json:"users"`
}

// Snapshot is a clip's aggregated state. RatingCounts always holds the five
// categories in the order 1, 2, 3, 4, deny. Average is nil when the clip has
// no numeric ratings.
type Snapshot struct {
	ClipID        uuid.UUID `json:"clip_id"`
	RatingCounts  []Count   `json:"rating_counts"`
	TotalRatings  int       `json:"total_ratings"`
	Average       *float64  `json:"average"`
	DenyThreshold int       `json:"deny_threshold"`
	IsDenied      bool      `json:"is_denied"`
}

// ValidateThreshold rejects thresholds below one.
func ValidateThreshold(threshold int) error {
	if threshold < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Denied reports whether denyCount reaches the threshold.
func Denied(denyCount, threshold int) bool {
	return denyCount >= threshold
}

// Compute aggregates judgments into a snapshot. Judgments for other clips are
// ignored. Users are listed in the order the judgments are given.
func Compute(clipID uuid.UUID, js []judgments.Judgment, threshold int) Snapshot {
	counts := make([]Count, len(judgments.Values))
	index := make(map[judgments.Value]int, len(judgments.Values))
	for i, v := range judgments.Values {
		counts[i] = Count{Value: v, Users: []Rater{}}
		index[v] = i
	}

	var total, numeric, sum int
	for _, j := range js {
		if j.ClipID != clipID {
			continue
		}
		i, ok := index[j.Value]
		if !ok {
			continue
		}

		counts[i].Count++
		counts[i].Users = append(counts[i].Users, Rater{UserID: j.UserID, Username: j.Username})
		total++

		if n, ok := j.Value.Numeric(); ok {
			numeric++
			sum += n
		}
	}

	var average *float64
	if numeric > 0 {
		avg := float64(sum) / float64(numeric)
		average = &avg
	}

	s := Snapshot{
		ClipID:       clipID,
		RatingCounts: counts,
		TotalRatings: total,
		Average:      average,
	}
	return s.WithThreshold(threshold)
}

// Count returns the number of judgments with value v.
func (s Snapshot) Count(v judgments.Value) int {
	for _, c := range s.RatingCounts {
		if c.Value == v {
			return c.Count
		}
	}
	return 0
}

// WithThreshold reclassifies the snapshot against another deny threshold.
func (s Snapshot) WithThreshold(threshold int) Snapshot {
	s.DenyThreshold = threshold
	s.IsDenied = Denied(s.Count(judgments.Deny), threshold)
	return s
}
