package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the stored timestamp format. Values are written in UTC with
// fixed width so that string comparison orders them chronologically.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the stored calendar-date format.
const DateLayout = "2006-01-02"

// FormatTime renders an instant for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatNullTime renders an optional instant; nil stores NULL.
func FormatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// FormatDate renders the calendar day of d in its own location.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// FormatNullDate renders an optional date; nil stores NULL.
func FormatNullDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return FormatDate(*d)
}

// ParseTime reads a stored timestamp. Older rows written with other
// RFC 3339 precisions are accepted too.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

// ParseNullTime reads an optional timestamp.
func ParseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDate reads a stored date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// ParseNullDate reads an optional date at midnight in loc.
func ParseNullDate(ns sql.NullString, loc *time.Location) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := ParseDate(ns.String, loc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// NullString stores an empty string as NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
