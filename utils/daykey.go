package utils

import "time"

// DateKeyLayout formats a calendar day as YYYY-MM-DD. Zero padding keeps
// day-keys ordered under plain string comparison.
const DateKeyLayout = "2006-01-02"

// DateKey returns the day-key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateKeyLayout)
}

// ValidDateKey reports whether s is a well-formed day-key.
func ValidDateKey(s string) bool {
	if len(s) != len(DateKeyLayout) {
		return false
	}
	_, err := time.Parse(DateKeyLayout, s)
	return err == nil
}
