// Package metrics computes the back-office dashboard figures.
// Every function is pure and works on whatever snapshot it is handed;
// records outside the range are ignored, so callers may pass pre-filtered
// or unfiltered slices.
package metrics

import (
	"errors"
	"sort"
	"time"

	"zefit/internal/domain/member"
	"zefit/internal/domain/membership"
	"zefit/internal/domain/money"
	"zefit/internal/domain/payment"
	"zefit/internal/domain/visit"
)

// Aggregation constants
const (
	TopVisitorsLimit = 5
	ExpiringWindow   = 7 // days after the range end
	NoDataLabel      = "No data"
	UnknownLabel     = "Unknown"
)

// ErrInvalidRange is returned when the range end precedes its start.
var ErrInvalidRange = errors.New("range end cannot be before range start")

// Range is an inclusive span of calendar dates in one location.
type Range struct {
	From time.Time // 00:00 of the first day
	To   time.Time // 00:00 of the last day
}

// NewRange normalizes two instants to their calendar days in loc.
// PRE: loc is non-nil
// POST: From <= To, both at midnight in loc
func NewRange(from, to time.Time, loc *time.Location) (Range, error) {
	r := Range{From: midnight(from.In(loc)), To: midnight(to.In(loc))}
	if r.To.Before(r.From) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Start returns the first instant of the range.
func (r Range) Start() time.Time {
	return r.From
}

// End returns the last instant of the range (23:59:59.999999999 on To).
func (r Range) End() time.Time {
	return r.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether an instant falls inside the range, inclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start()) && !t.After(r.End())
}

// ContainsDate reports whether the calendar day of d falls inside the range.
func (r Range) ContainsDate(d time.Time) bool {
	day := midnight(d.In(r.From.Location()))
	return !day.Before(r.From) && !day.After(r.To)
}

// Day returns the calendar day of t in the range's location.
func (r Range) Day(t time.Time) time.Time {
	return midnight(t.In(r.From.Location()))
}

// DayTotal is one point of a per-day money series.
type DayTotal struct {
	Day   time.Time
	Total money.Amount
}

// DayCount is one point of a per-day count series.
type DayCount struct {
	Day   time.Time
	Count int
}

// MemberCount pairs a member with a visit count.
type MemberCount struct {
	MemberID string
	Name     string
	Count    int
}

// BestSeller is the most sold membership type in a range.
type BestSeller struct {
	TypeID string
	Name   string
	Count  int
}

// ExpiringPackage is an active package ending shortly after the range.
type ExpiringPackage struct {
	PeriodID   string
	MemberID   string
	MemberName string
	TypeName   string
	EndDate    time.Time
}

// CountNewMembers counts members created inside the range, both ends inclusive.
func CountNewMembers(members []member.Member, r Range) int {
	n := 0
	for _, m := range members {
		if r.Contains(m.CreatedAt) {
			n++
		}
	}
	return n
}

// AveragePrice is the mean price of periods that started in the range.
// Returns 0 when none qualify.
func AveragePrice(periods []membership.Period, r Range) money.Amount {
	var prices []money.Amount
	for _, p := range periods {
		if r.ContainsDate(p.StartDate) {
			prices = append(prices, p.Price)
		}
	}
	return money.Mean(prices)
}

// BestSelling returns the type with the most periods started in the range.
// Ties go to the type name, then the type ID, in ascending order.
// Name is NoDataLabel with no periods and UnknownLabel when the type is gone.
func BestSelling(periods []membership.Period, r Range, types map[string]membership.Type) BestSeller {
	counts := make(map[string]int)
	for _, p := range periods {
		if r.ContainsDate(p.StartDate) {
			counts[p.TypeID]++
		}
	}
	if len(counts) == 0 {
		return BestSeller{Name: NoDataLabel}
	}
	ranked := make([]BestSeller, 0, len(counts))
	for id, c := range counts {
		name := UnknownLabel
		if t, ok := types[id]; ok {
			name = t.Name
		}
		ranked = append(ranked, BestSeller{TypeID: id, Name: name, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].TypeID < ranked[j].TypeID
	})
	return ranked[0]
}

// TotalPayments sums payments made inside the range.
func TotalPayments(payments []payment.Payment, r Range) money.Amount {
	var total money.Amount
	for _, p := range payments {
		if r.Contains(p.PaidAt) {
			total += p.Amount
		}
	}
	return total
}

// DailyPayments sums payments per calendar day, ascending, without empty days.
// The series always adds up to TotalPayments over the same range.
func DailyPayments(payments []payment.Payment, r Range) []DayTotal {
	byDay := make(map[string]*DayTotal)
	for _, p := range payments {
		if !r.Contains(p.PaidAt) {
			continue
		}
		day := r.Day(p.PaidAt)
		key := day.Format(membership.DateLayout)
		if _, ok := byDay[key]; !ok {
			byDay[key] = &DayTotal{Day: day}
		}
		byDay[key].Total += p.Amount
	}
	out := make([]DayTotal, 0, len(byDay))
	for _, dt := range byDay {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// DailyVisits counts visits per calendar day of arrival, ascending, without empty days.
func DailyVisits(visits []visit.Visit, r Range) []DayCount {
	byDay := make(map[string]*DayCount)
	for _, v := range visits {
		if !r.Contains(v.ArrivedAt) {
			continue
		}
		day := r.Day(v.ArrivedAt)
		key := day.Format(membership.DateLayout)
		if _, ok := byDay[key]; !ok {
			byDay[key] = &DayCount{Day: day}
		}
		byDay[key].Count++
	}
	out := make([]DayCount, 0, len(byDay))
	for _, dc := range byDay {
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// TopVisitors returns up to limit members with the most visits in the range.
// Ties go to the member name, then the member ID, in ascending order.
func TopVisitors(visits []visit.Visit, r Range, names map[string]string, limit int) []MemberCount {
	counts := make(map[string]int)
	for _, v := range visits {
		if r.Contains(v.ArrivedAt) {
			counts[v.MemberID]++
		}
	}
	ranked := make([]MemberCount, 0, len(counts))
	for id, c := range counts {
		name, ok := names[id]
		if !ok {
			name = UnknownLabel
		}
		ranked = append(ranked, MemberCount{MemberID: id, Name: name, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].MemberID < ranked[j].MemberID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ExpiringSoon lists active periods ending within ExpiringWindow days
// of the range end, inclusive, ordered by end date.
func ExpiringSoon(periods []membership.Period, r Range, names map[string]string) []ExpiringPackage {
	windowEnd := r.To.AddDate(0, 0, ExpiringWindow)
	var out []ExpiringPackage
	for _, p := range periods {
		if !p.IsActive() || p.EndDate == nil {
			continue
		}
		end := r.Day(*p.EndDate)
		if end.Before(r.To) || end.After(windowEnd) {
			continue
		}
		name, ok := names[p.MemberID]
		if !ok {
			name = UnknownLabel
		}
		out = append(out, ExpiringPackage{
			PeriodID:   p.ID,
			MemberID:   p.MemberID,
			MemberName: name,
			TypeName:   p.Label(),
			EndDate:    end,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out
}

// CurrentlyPresent counts open visits that arrived within the presence window of now.
// It ignores any date range.
func CurrentlyPresent(visits []visit.Visit, now time.Time) int {
	n := 0
	for i := range visits {
		if visits[i].IsPresent(now) {
			n++
		}
	}
	return n
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
