package membership_test

import (
	"testing"
	"time"

	"zefit/internal/domain/membership"
	"zefit/internal/domain/money"
)

func date(s string) time.Time {
	t, _ := time.Parse(membership.DateLayout, s)
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

// TestPeriodValidation tests validation of Period.
func TestPeriodValidation(t *testing.T) {
	valid := membership.Period{
		ID:        "p1",
		MemberID:  "m1",
		TypeID:    "t1",
		Price:     money.FromUnits(40),
		StartDate: date("2025-11-01"),
		EndDate:   datePtr("2025-11-30"),
		Status:    membership.StatusActive,
	}
	tests := []struct {
		name    string
		mutate  func(p *membership.Period)
		wantErr error
	}{
		{"valid", func(p *membership.Period) {}, nil},
		{"open end", func(p *membership.Period) { p.EndDate = nil }, nil},
		{"same day", func(p *membership.Period) { p.EndDate = datePtr("2025-11-01") }, nil},
		{"end before start", func(p *membership.Period) { p.EndDate = datePtr("2025-10-31") }, membership.ErrEndBeforeStart},
		{"no type", func(p *membership.Period) { p.TypeID = "" }, membership.ErrEmptyTypeID},
		{"no member", func(p *membership.Period) { p.MemberID = "" }, membership.ErrEmptyMemberID},
		{"no start", func(p *membership.Period) { p.StartDate = time.Time{} }, membership.ErrEmptyStartDate},
		{"bad status", func(p *membership.Period) { p.Status = "frozen" }, membership.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestDaysUntilExpiry verifies ceiling-day arithmetic.
func TestDaysUntilExpiry(t *testing.T) {
	p := membership.Period{EndDate: datePtr("2025-11-30")}
	tests := []struct {
		now  time.Time
		want int
	}{
		{date("2025-11-20"), 10},
		{date("2025-11-20").Add(1 * time.Hour), 10},
		{date("2025-11-30"), 0},
		{date("2025-12-02"), -2},
	}
	for _, tt := range tests {
		if got := p.DaysUntilExpiry(tt.now); got != tt.want {
			t.Errorf("DaysUntilExpiry(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

// TestActivePeriod verifies the first active period with an end date wins.
func TestActivePeriod(t *testing.T) {
	periods := []membership.Period{
		{ID: "open", Status: membership.StatusActive},
		{ID: "expired", Status: membership.StatusExpired, EndDate: datePtr("2025-10-31")},
		{ID: "latest", Status: membership.StatusActive, EndDate: datePtr("2025-12-31")},
		{ID: "older", Status: membership.StatusActive, EndDate: datePtr("2025-11-30")},
	}
	got, ok := membership.ActivePeriod(periods)
	if !ok || got.ID != "latest" {
		t.Fatalf("ActivePeriod = %q, %v; want latest, true", got.ID, ok)
	}
	if _, ok := membership.ActivePeriod(periods[:2]); ok {
		t.Error("expected no active package")
	}
}

// TestFindOverlap covers both overlapping and adjacent periods.
func TestFindOverlap(t *testing.T) {
	existing := []membership.Period{
		{ID: "nov", StartDate: date("2025-11-01"), EndDate: datePtr("2025-11-30")},
	}
	tests := []struct {
		name string
		cand membership.Period
		want bool
	}{
		{"adjacent", membership.Period{StartDate: date("2025-12-01"), EndDate: datePtr("2025-12-31")}, false},
		{"mid-period upgrade", membership.Period{StartDate: date("2025-11-15"), EndDate: datePtr("2025-12-14")}, true},
		{"open ended before", membership.Period{StartDate: date("2025-10-01")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := membership.FindOverlap(existing, tt.cand)
			if got != tt.want {
				t.Errorf("FindOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDefaultEndDate verifies a 30 day package ends on day 30.
func TestDefaultEndDate(t *testing.T) {
	typ := membership.Type{Name: "Monthly", DurationDays: 30}
	end := typ.DefaultEndDate(date("2025-11-01"))
	if end == nil || !end.Equal(date("2025-11-30")) {
		t.Fatalf("DefaultEndDate = %v, want 2025-11-30", end)
	}
	if (&membership.Type{}).DefaultEndDate(date("2025-11-01")) != nil {
		t.Error("zero duration should yield nil")
	}
}
