package seasons_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/faults"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendarWindows(t *testing.T) {
	tests := []struct {
		season    seasons.Season
		year      int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{seasons.Spring, 2025, date(2025, time.March, 21), date(2025, time.June, 21).Add(-time.Nanosecond)},
		{seasons.Summer, 2025, date(2025, time.June, 21), date(2025, time.September, 21).Add(-time.Nanosecond)},
		{seasons.Fall, 2025, date(2025, time.September, 21), date(2025, time.December, 21).Add(-time.Nanosecond)},
		{seasons.Winter, 2025, date(2025, time.December, 21), date(2026, time.March, 21).Add(-time.Nanosecond)},
	}

	for _, tt := range tests {
		t.Run(string(tt.season), func(t *testing.T) {
			w, err := seasons.Calendar(tt.season, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, w.Start)
			assert.Equal(t, tt.wantEnd, w.End)
		})
	}
}

func TestCalendarIncludesLastInstant(t *testing.T) {
	w, err := seasons.Calendar(seasons.Spring, 2025)
	require.NoError(t, err)

	assert.True(t, w.Contains(time.Date(2025, time.June, 20, 23, 59, 59, 999_999_999, time.UTC)))
	assert.False(t, w.Contains(date(2025, time.June, 21)))
	assert.True(t, w.Contains(date(2025, time.March, 21)))
	assert.False(t, w.Contains(date(2025, time.March, 21).Add(-time.Nanosecond)))
}

func TestCalendarRejectsInvalidInput(t *testing.T) {
	_, err := seasons.Calendar("monsoon", 2025)
	assert.ErrorIs(t, err, seasons.ErrInvalidSeason)

	_, err = seasons.Calendar(seasons.Fall, 0)
	assert.ErrorIs(t, err, seasons.ErrInvalidSeason)

	_, err = seasons.Calendar(seasons.Winter, 9999)
	assert.ErrorIs(t, err, seasons.ErrInvalidSeason)
	assert.True(t, errors.Is(err, faults.ErrValidation))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    seasons.Season
		wantErr bool
	}{
		{"spring", seasons.Spring, false},
		{"  Winter ", seasons.Winter, false},
		{"FALL", seasons.Fall, false},
		{"autumn", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := seasons.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, seasons.ErrInvalidSeason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeasonUnmarshalJSON(t *testing.T) {
	var body struct {
		Season seasons.Season `json:"season"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"season":"Summer"}`), &body))
	assert.Equal(t, seasons.Summer, body.Season)

	assert.Error(t, json.Unmarshal([]byte(`{"season":"rainy"}`), &body))
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		name       string
		at         time.Time
		wantSeason seasons.Season
		wantYear   int
	}{
		{"early january is last year's winter", date(2026, time.January, 5), seasons.Winter, 2025},
		{"march 20 is still winter", time.Date(2026, time.March, 20, 23, 0, 0, 0, time.UTC), seasons.Winter, 2025},
		{"spring start", date(2026, time.March, 21), seasons.Spring, 2026},
		{"mid summer", date(2026, time.July, 4), seasons.Summer, 2026},
		{"fall", date(2026, time.October, 19), seasons.Fall, 2026},
		{"late december winter", date(2026, time.December, 25), seasons.Winter, 2026},
		{"non utc input", time.Date(2026, time.March, 20, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)), seasons.Spring, 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, y := seasons.Current(tt.at)
			assert.Equal(t, tt.wantSeason, s)
			assert.Equal(t, tt.wantYear, y)
		})
	}
}

func TestWindowFinal(t *testing.T) {
	w, err := seasons.Calendar(seasons.Fall, 2025)
	require.NoError(t, err)

	week := w.Final(7 * 24 * time.Hour)
	assert.Equal(t, w.End, week.End)
	assert.Equal(t, w.End.Add(-7*24*time.Hour), week.Start)

	short := seasons.Window{Start: date(2025, time.January, 1), End: date(2025, time.January, 3)}
	clamped := short.Final(7 * 24 * time.Hour)
	assert.Equal(t, short.Start, clamped.Start)
}
