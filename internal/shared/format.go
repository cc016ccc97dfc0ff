// Helpers for normalizing song keys and formatting chart dates and durations.
package shared

import (
	"fmt"
	"strings"
	"time"
)

// weekLayout is the canonical chart week date format.
const weekLayout = "2006-01-02"

// NormalizeSongKey builds a normalized lookup key from a song title and artist.
//
// Lowercases both parts, collapses internal whitespace, and joins them with a pipe.
// Used for cache lookups and cross-week chart matching.
func NormalizeSongKey(title, artist string) string {
	normalize := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return normalize(title) + "|" + normalize(artist)
}

// FormatDuration formats a duration in seconds as M:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatWeek formats a time as a canonical chart week date (YYYY-MM-DD).
func FormatWeek(t time.Time) string {
	return t.Format(weekLayout)
}

// ParseWeek parses a date string and normalizes it to the canonical chart week.
//
// Chart weeks are dated on Saturdays; any other weekday rolls forward to the
// next Saturday. Returns ErrInvalidWeek when the input does not parse.
func ParseWeek(s string) (string, error) {
	t, err := time.Parse(weekLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidWeek, s)
	}

	offset := (int(time.Saturday) - int(t.Weekday()) + 7) % 7
	return FormatWeek(t.AddDate(0, 0, offset)), nil
}

// PreviousWeek returns the chart week seven days before the given week.
func PreviousWeek(week string) (string, error) {
	t, err := time.Parse(weekLayout, week)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeek, week)
	}
	return FormatWeek(t.AddDate(0, 0, -7)), nil
}

// FormatMovement renders a chart position change relative to last week.
//
// Returns "NEW" for debuts (last week 0), "=" for holds, and a signed delta otherwise.
func FormatMovement(position, lastWeek int) string {
	switch {
	case lastWeek <= 0:
		return "NEW"
	case lastWeek == position:
		return "="
	case lastWeek > position:
		return fmt.Sprintf("+%d", lastWeek-position)
	default:
		return fmt.Sprintf("-%d", position-lastWeek)
	}
}
