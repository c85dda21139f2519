// Package trophies persists criteria winners as immutable season awards.
// Preview evaluates without writing; Commit records each winner at most once
// per season, year, criterion, and user.
package trophies

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/faults"
)

// EventCommitted is published once per newly created record.
const EventCommitted = "trophy.committed"

// Domain errors for trophy operations.
var (
	ErrNotFound       = fmt.Errorf("trophy %w", faults.ErrNotFound)
	ErrAlreadyAwarded = fmt.Errorf("trophy %w", faults.ErrAlreadyAwarded)
	ErrInvalidID      = fmt.Errorf("%w: invalid trophy id", faults.ErrValidation)
)

// Record is one awarded trophy.
type Record struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	Username     string         `json:"username"`
	CriteriaID   uuid.UUID      `json:"criteria_id"`
	CriteriaName string         `json:"criteria_name"`
	Season       seasons.Season `json:"season"`
	Year         int            `json:"year"`
	Value        float64        `json:"value"`
	DateEarned   time.Time      `json:"date_earned"`
}

// Key is the uniqueness tuple of a record.
type Key struct {
	Season     seasons.Season
	Year       int
	CriteriaID uuid.UUID
	UserID     uuid.UUID
}

// Key returns the record's uniqueness tuple.
func (r Record) Key() Key {
	return Key{Season: r.Season, Year: r.Year, CriteriaID: r.CriteriaID, UserID: r.UserID}
}

// CommitCommand names the season to award. Strict fails the whole commit
// when any winner already holds the trophy.
type CommitCommand struct {
	Season seasons.Season `json:"season"`
	Year   int            `json:"year"`
	Strict bool           `json:"strict"`
}

// Report is the archived summary of a commit.
type Report struct {
	Season      seasons.Season      `json:"season"`
	Year        int                 `json:"year"`
	CommittedAt time.Time           `json:"committed_at"`
	Evaluation  *criteria.AllResult `json:"evaluation"`
	Awarded     []Record            `json:"awarded"`
}

// ArchiveEntry locates one archived season report.
type ArchiveEntry struct {
	Season seasons.Season `json:"season"`
	Year   int            `json:"year"`
	Key    string         `json:"key"`
}

// Records converts an evaluation into one record per winner per criterion.
// Results carrying an error contribute nothing.
func Records(all *criteria.AllResult, earned time.Time) []Record {
	records := make([]Record, 0, all.TotalTrophies)
	for _, result := range all.Criteria {
		if result.Error != "" {
			continue
		}
		for _, w := range result.Winners {
			records = append(records, Record{
				UserID:       w.UserID,
				Username:     w.Username,
				CriteriaID:   result.CriteriaID,
				CriteriaName: result.CriteriaName,
				Season:       all.Season,
				Year:         all.Year,
				Value:        w.Value,
				DateEarned:   earned,
			})
		}
	}
	return records
}
