package criteria

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "trophy_criteria", "tc").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("criteria_type", "Type").
	Project("season", "Season").
	Project("year", "Year").
	Project("award_limit", "AwardLimit").
	Project("min_value", "MinValue").
	Project("priority", "Priority").
	Project("is_active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Priority",
	Descending: true,
}

// Filters contains optional filtering criteria for criterion queries.
// Name uses case-insensitive contains matching.
type Filters struct {
	Name   *string         `json:"name,omitempty"`
	Type   *Type           `json:"type,omitempty"`
	Season *seasons.Season `json:"season,omitempty"`
	Active *bool           `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Type", f.Type).
		WhereEquals("Season", f.Season).
		WhereEquals("Active", f.Active)
}

// Matches reports whether c satisfies every set filter.
func (f Filters) Matches(c Criterion) bool {
	if f.Name != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*f.Name)) {
		return false
	}
	if f.Type != nil && *f.Type != c.Type {
		return false
	}
	if f.Season != nil && (c.Season == nil || *c.Season != *f.Season) {
		return false
	}
	if f.Active != nil && *f.Active != c.Active {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("name"); s != "" {
		f.Name = &s
	}

	if s := values.Get("type"); s != "" {
		if t, err := ParseType(s); err == nil {
			f.Type = &t
		}
	}

	if s := values.Get("season"); s != "" {
		if season, err := seasons.Parse(s); err == nil {
			f.Season = &season
		}
	}

	if s := values.Get("active"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			f.Active = &b
		}
	}

	return f
}

func scanCriterion(s repository.Scanner) (Criterion, error) {
	var (
		c      Criterion
		season sql.NullString
		year   sql.NullInt64
	)

	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Type,
		&season,
		&year,
		&c.AwardLimit,
		&c.MinValue,
		&c.Priority,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if season.Valid {
		v := seasons.Season(season.String)
		c.Season = &v
	}
	if year.Valid {
		v := int(year.Int64)
		c.Year = &v
	}

	return c, nil
}

// args orders command fields to match the insert and update column lists.
func (cmd CreateCommand) args() []any {
	var season, year any
	if cmd.Season != nil {
		season = string(*cmd.Season)
	}
	if cmd.Year != nil {
		year = *cmd.Year
	}
	return []any{
		cmd.Name,
		cmd.Description,
		string(cmd.Type),
		season,
		year,
		cmd.AwardLimit,
		cmd.MinValue,
		cmd.Priority,
		*cmd.Active,
	}
}
