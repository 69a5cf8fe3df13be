package utils

import "time"

// DayFormat is the calendar-day layout used across encounter and streak
// records.
const DayFormat = "2006-01-02"

// PairKey returns the canonical key for an unordered party pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// SortPair returns the two ids in canonical order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// DirectedKey returns the key for a directed donor→recipient pair.
func DirectedKey(from, to string) string {
	return from + ">" + to
}

// DayString formats an instant as its UTC calendar day.
func DayString(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// IsNextDay reports whether day b is exactly one calendar day after day a.
// Malformed dates count as a gap.
func IsNextDay(a, b string) bool {
	ta, err := time.Parse(DayFormat, a)
	if err != nil {
		return false
	}
	tb, err := time.Parse(DayFormat, b)
	if err != nil {
		return false
	}
	return tb.Sub(ta) == 24*time.Hour
}
