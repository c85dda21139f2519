package trophies

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "trophies", "t").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("username", "Username").
	Project("criteria_id", "CriteriaID").
	Project("criteria_name", "CriteriaName").
	Project("season", "Season").
	Project("year", "Year").
	Project("value", "Value").
	Project("date_earned", "DateEarned")

var defaultSort = query.SortField{
	Field:      "DateEarned",
	Descending: true,
}

// Filters contains optional filtering criteria for trophy queries.
type Filters struct {
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	CriteriaID *uuid.UUID      `json:"criteria_id,omitempty"`
	Season     *seasons.Season `json:"season,omitempty"`
	Year       *int            `json:"year,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("CriteriaID", f.CriteriaID).
		WhereEquals("Season", f.Season).
		WhereEquals("Year", f.Year)
}

// Matches reports whether r satisfies every set filter.
func (f Filters) Matches(r Record) bool {
	if f.UserID != nil && *f.UserID != r.UserID {
		return false
	}
	if f.CriteriaID != nil && *f.CriteriaID != r.CriteriaID {
		return false
	}
	if f.Season != nil && *f.Season != r.Season {
		return false
	}
	if f.Year != nil && *f.Year != r.Year {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("user_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.UserID = &id
		}
	}

	if s := values.Get("criteria_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.CriteriaID = &id
		}
	}

	if s := values.Get("season"); s != "" {
		if season, err := seasons.Parse(s); err == nil {
			f.Season = &season
		}
	}

	if s := values.Get("year"); s != "" {
		if year, err := strconv.Atoi(s); err == nil {
			f.Year = &year
		}
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.UserID,
		&r.Username,
		&r.CriteriaID,
		&r.CriteriaName,
		&r.Season,
		&r.Year,
		&r.Value,
		&r.DateEarned,
	)
	r.DateEarned = r.DateEarned.UTC()
	return r, err
}
