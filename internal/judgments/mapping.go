package judgments

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "judgments", "j").
	Project("clip_id", "ClipID").
	Project("user_id", "UserID").
	Project("username", "Username").
	Project("value", "Value").
	Project("judged_at", "Timestamp")

var defaultSort = query.SortField{
	Field:      "Timestamp",
	Descending: true,
}

var chronological = query.SortField{Field: "Timestamp"}

// Filters contains optional filtering criteria for judgment queries.
// Username uses case-insensitive contains matching; From and To bound the
// judgment day inclusively.
type Filters struct {
	ClipID   *uuid.UUID `json:"clip_id,omitempty"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	Username *string    `json:"username,omitempty"`
	Value    *Value     `json:"value,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	from, until := Range{Start: f.From, End: f.To}.Bounds()

	return b.
		WhereEquals("ClipID", f.ClipID).
		WhereEquals("UserID", f.UserID).
		WhereContains("Username", f.Username).
		WhereEquals("Value", f.Value).
		WhereAtLeast("Timestamp", from).
		WhereBefore("Timestamp", until)
}

// Matches reports whether j satisfies every set filter.
func (f Filters) Matches(j Judgment) bool {
	if f.ClipID != nil && *f.ClipID != j.ClipID {
		return false
	}
	if f.UserID != nil && *f.UserID != j.UserID {
		return false
	}
	if f.Username != nil && !containsFold(j.Username, *f.Username) {
		return false
	}
	if f.Value != nil && *f.Value != j.Value {
		return false
	}
	return Range{Start: f.From, End: f.To}.Contains(j.Timestamp)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("clip_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.ClipID = &id
		}
	}

	if s := values.Get("user_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.UserID = &id
		}
	}

	if s := values.Get("username"); s != "" {
		f.Username = &s
	}

	if s := values.Get("value"); s != "" {
		if v, err := ParseValue(s); err == nil {
			f.Value = &v
		}
	}

	if s := values.Get("from"); s != "" {
		if t, err := ParseDay(s); err == nil {
			f.From = &t
		}
	}

	if s := values.Get("to"); s != "" {
		if t, err := ParseDay(s); err == nil {
			f.To = &t
		}
	}

	return f
}

func scanJudgment(s repository.Scanner) (Judgment, error) {
	var j Judgment
	err := s.Scan(
		&j.ClipID,
		&j.UserID,
		&j.Username,
		&j.Value,
		&j.Timestamp,
	)
	j.Timestamp = j.Timestamp.UTC()
	return j, err
}
