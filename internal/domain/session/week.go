package session

import "time"

// DaysPerWeek is the number of day buckets in a week view.
const DaysPerWeek = 7

// Week is a calendar week: [Start, Start+7d), Start is Monday 00:00.
type Week struct {
	Start time.Time
}

// WeekOf returns the week containing ref, in ref's location.
// Monday offset is (weekday + 6) mod 7 with Sunday = 0.
func WeekOf(ref time.Time) Week {
	offset := (int(ref.Weekday()) + 6) % 7
	d := ref.AddDate(0, 0, -offset)
	return Week{Start: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, ref.Location())}
}

// End returns the exclusive end of the week.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, DaysPerWeek)
}

// Contains reports whether t falls within the week.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// Days returns the seven day starts, Monday first.
func (w Week) Days() []time.Time {
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Next returns the following week.
func (w Week) Next() Week {
	return Week{Start: w.Start.AddDate(0, 0, DaysPerWeek)}
}

// Previous returns the preceding week.
func (w Week) Previous() Week {
	return Week{Start: w.Start.AddDate(0, 0, -DaysPerWeek)}
}

// DayBucket holds the sessions starting on one calendar day.
type DayBucket struct {
	Date     time.Time
	Sessions []Session
}

// IsEmpty reports whether no sessions fall on this day.
func (b DayBucket) IsEmpty() bool {
	return len(b.Sessions) == 0
}

// Bucket groups sessions into exactly seven day buckets. Sessions outside
// the week are dropped. Order within a day follows the input order.
func (w Week) Bucket(sessions []Session) []DayBucket {
	buckets := make([]DayBucket, DaysPerWeek)
	for i, d := range w.Days() {
		buckets[i] = DayBucket{Date: d}
	}
	loc := w.Start.Location()
	for _, s := range sessions {
		start := s.StartsAt.In(loc)
		if !w.Contains(start) {
			continue
		}
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		idx := int(day.Sub(w.Start).Hours()+12) / 24
		if idx < 0 || idx >= DaysPerWeek {
			continue
		}
		buckets[idx].Sessions = append(buckets[idx].Sessions, s)
	}
	return buckets
}

// DefaultFormDate returns today when it lies in the week, otherwise Monday.
func (w Week) DefaultFormDate(now time.Time) time.Time {
	n := now.In(w.Start.Location())
	if w.Contains(n) {
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
	}
	return w.Start
}
