// Package judgments implements the judgment store: one rating per clip and user,
// with toggle semantics on resubmission. It provides the domain types, a
// PostgreSQL repository, and an in-memory store.
package judgments

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Value is a single rating: a numeric score from 1 to 4, or a deny vote.
type Value string

const (
	One   Value = "1"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Deny  Value = "deny"
)

// Values lists every rating value in display order.
var Values = []Value{One, Two, Three, Four, Deny}

// ParseValue normalizes a rating value. Deny matching is case-insensitive.
func ParseValue(s string) (Value, error) {
	v := Value(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return v, nil
}

// Valid reports whether v is one of the five rating values.
func (v Value) Valid() bool {
	switch v {
	case One, Two, Three, Four, Deny:
		return true
	}
	return false
}

// Numeric returns the score for 1-4 and false for deny.
func (v Value) Numeric() (int, bool) {
	if v == Deny || !v.Valid() {
		return 0, false
	}
	n, _ := strconv.Atoi(string(v))
	return n, true
}

// UnmarshalJSON accepts the string form ("1".."4", "deny") and bare integers 1-4.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		parsed, err := ParseValue(strconv.Itoa(n))
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, data)
	}
	parsed, err := ParseValue(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Judgment is one user's rating of one clip. Username is a display copy
// captured at rating time; UserID is the identity.
type Judgment struct {
	ClipID    uuid.UUID `json:"clip_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Value     Value     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome describes what a mutation did to the stored judgment.
type Outcome string

const (
	Created   Outcome = "created"
	Replaced  Outcome = "replaced"
	Removed   Outcome = "removed"
	Unchanged Outcome = "unchanged"
)

// Change reports the stored judgment before and after a mutation.
// Previous is nil on create, Current is nil on removal.
type Change struct {
	Outcome  Outcome   `json:"outcome"`
	Previous *Judgment `json:"previous,omitempty"`
	Current  *Judgment `json:"current,omitempty"`
}

// DenyDelta returns the change in deny votes caused by the mutation: -1, 0, or 1.
func (c Change) DenyDelta() int {
	delta := 0
	if c.Current != nil && c.Current.Value == Deny {
		delta++
	}
	if c.Previous != nil && c.Previous.Value == Deny {
		delta--
	}
	return delta
}

// apply resolves the toggle rule for a submission against the stored judgment.
func apply(existing *Judgment, submitted Judgment) Change {
	switch {
	case existing == nil:
		return Change{Outcome: Created, Current: &submitted}
	case existing.Value == submitted.Value:
		return Change{Outcome: Removed, Previous: existing}
	default:
		return Change{Outcome: Replaced, Previous: existing, Current: &submitted}
	}
}
