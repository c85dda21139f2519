// Package criteria stores award criteria and ranks users against them for a
// season. Evaluation is read-only; persisting winners belongs to trophies.
package criteria

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/seasons"
)

// Type selects the metric a criterion ranks users by.
type Type string

const (
	TopRaterCount     Type = "topRaterCount"
	TopAverageGiven   Type = "topAverageGiven"
	MostDenied        Type = "mostDenied"
	MostRatingsOneDay Type = "mostRatingsOneDay"
	MostOneRatings    Type = "mostOneRatings"
	MostFourRatings   Type = "mostFourRatings"
	MostRecentRatings Type = "mostRecentRatings"
	MostActiveDays    Type = "mostActiveDays"
)

// Types lists every supported criterion type.
var Types = []Type{
	TopRaterCount,
	TopAverageGiven,
	MostDenied,
	MostRatingsOneDay,
	MostOneRatings,
	MostFourRatings,
	MostRecentRatings,
	MostActiveDays,
}

var aliases = map[string]Type{
	"most_ratings":         TopRaterCount,
	"best_average_rating":  TopAverageGiven,
	"most_denies":          MostDenied,
	"most_ratings_one_day": MostRatingsOneDay,
	"most_one_ratings":     MostOneRatings,
	"most_four_ratings":    MostFourRatings,
	"most_recent_ratings":  MostRecentRatings,
	"most_active_days":     MostActiveDays,
}

// ParseType resolves a type name, accepting snake_case aliases.
func ParseType(s string) (Type, error) {
	if t, ok := aliases[s]; ok {
		return t, nil
	}
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// UnmarshalJSON accepts canonical names and snake_case aliases.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalText lets catalog files use either naming style.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TypeInfo describes a criterion type for clients building criteria.
type TypeInfo struct {
	Type        Type   `json:"type"`
	Description string `json:"description"`
	Floor       string `json:"floor"`
}

// Catalog describes every supported type.
var Catalog = []TypeInfo{
	{TopRaterCount, "Most judgments given during the season", "minimum judgments"},
	{TopAverageGiven, "Highest average numeric rating given, rounded to two decimals", "minimum numeric judgments"},
	{MostDenied, "Most deny votes cast", "minimum deny votes"},
	{MostRatingsOneDay, "Most judgments given on a single UTC day", "minimum judgments on that day"},
	{MostOneRatings, "Most ratings of 1 given", "minimum ratings of 1"},
	{MostFourRatings, "Most ratings of 4 given", "minimum ratings of 4"},
	{MostRecentRatings, "Most judgments during the final seven days of the season", "minimum judgments in the final week"},
	{MostActiveDays, "Most distinct UTC days with at least one judgment", "minimum active days"},
}

// Criterion is a named rule that produces award winners for a season.
// Season and Year restrict the criterion to one season when set.
type Criterion struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        Type            `json:"type"`
	Season      *seasons.Season `json:"season,omitempty"`
	Year        *int            `json:"year,omitempty"`
	AwardLimit  int             `json:"award_limit"`
	MinValue    float64         `json:"min_value"`
	Priority    int             `json:"priority"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AppliesTo reports whether the criterion takes part in the given season's evaluation.
func (c Criterion) AppliesTo(season seasons.Season, year int) bool {
	if c.Season != nil && *c.Season != season {
		return false
	}
	if c.Year != nil && *c.Year != year {
		return false
	}
	return true
}

// CreateCommand carries the data needed to create a criterion.
type CreateCommand struct {
	Name        string          `json:"name" yaml:"name" validate:"required,max=128"`
	Description string          `json:"description" yaml:"description" validate:"max=1024"`
	Type        Type            `json:"type" yaml:"type" validate:"required"`
	Season      *seasons.Season `json:"season,omitempty" yaml:"season"`
	Year        *int            `json:"year,omitempty" yaml:"year" validate:"omitempty,min=1,max=9998"`
	AwardLimit  int             `json:"award_limit" yaml:"award_limit" validate:"min=0,max=100"`
	MinValue    float64         `json:"min_value" yaml:"min_value" validate:"min=0"`
	Priority    int             `json:"priority" yaml:"priority"`
	Active      *bool           `json:"active,omitempty" yaml:"active"`
}

// UpdateCommand carries the full replacement of a criterion's fields.
type UpdateCommand = CreateCommand

// Winner is a ranked user and the metric value that earned the place.
type Winner struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Value    float64   `json:"value"`
}

// Result is the outcome of evaluating one criterion. Error is set instead of
// failing when no user qualifies or the criterion could not be evaluated.
type Result struct {
	CriteriaID   uuid.UUID      `json:"criteria_id"`
	CriteriaName string         `json:"criteria_name"`
	CriteriaType Type           `json:"criteria_type"`
	Season       seasons.Season `json:"season"`
	Year         int            `json:"year"`
	TotalWinners int            `json:"total_winners"`
	Winners      []Winner       `json:"winners"`
	Preview      bool           `json:"preview"`
	Error        string         `json:"error,omitempty"`
}

// AllResult is the batch evaluation of every applicable active criterion.
type AllResult struct {
	Season        seasons.Season `json:"season"`
	Year          int            `json:"year"`
	TotalCriteria int            `json:"total_criteria"`
	TotalTrophies int            `json:"total_trophies"`
	Preview       bool           `json:"preview"`
	Criteria      []Result       `json:"criteria"`
}

// Options selects the season a criterion is evaluated against. PreviewOnly
// marks results that will not be persisted.
type Options struct {
	Season      seasons.Season `json:"season"`
	Year        int            `json:"year"`
	PreviewOnly bool           `json:"preview_only"`
}

// NoWinners is the result error when no user passes the floor.
const NoWinners = "No users meet the criteria requirements"
