package membership_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zefit/internal/adapters/cache"
	"zefit/internal/adapters/storage/membership"
	"zefit/internal/adapters/storage/storagetest"
	domain "zefit/internal/domain/membership"
	"zefit/internal/domain/money"
)

var loc = time.FixedZone("CET", 3600)

func day(s string) time.Time {
	t, _ := time.ParseInLocation(domain.DateLayout, s, loc)
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// TestTypeSQLiteStore verifies save, get and name ordering.
func TestTypeSQLiteStore(t *testing.T) {
	s := membership.NewTypeSQLiteStore(storagetest.Open(t))
	ctx := context.Background()
	for _, typ := range []domain.Type{
		{ID: "t2", Name: "Monthly", DurationDays: 30, DefaultPrice: money.FromUnits(40)},
		{ID: "t1", Name: "Annual", DurationDays: 365, DefaultPrice: money.FromUnits(400)},
	} {
		if err := s.Save(ctx, typ); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	types, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(types) != 2 || types[0].Name != "Annual" || types[1].DefaultPrice != money.FromUnits(40) {
		t.Errorf("types = %+v", types)
	}
	if _, err := s.GetByID(ctx, "nope"); err == nil {
		t.Error("expected not found")
	}
}

// TestPeriodSQLiteStore verifies joins, ordering and date filters.
func TestPeriodSQLiteStore(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedMember(t, db, "m1", "Ana")
	types := membership.NewTypeSQLiteStore(db)
	if err := types.Save(context.Background(), domain.Type{ID: "monthly", Name: "Monthly", DurationDays: 30}); err != nil {
		t.Fatalf("Save type: %v", err)
	}
	s := membership.NewPeriodSQLiteStore(db, loc)
	ctx := context.Background()
	periods := []domain.Period{
		{ID: "oct", MemberID: "m1", TypeID: "monthly", Price: money.FromUnits(40), StartDate: day("2025-10-01"), EndDate: dayPtr("2025-10-31"), Status: domain.StatusActive},
		{ID: "nov", MemberID: "m1", TypeID: "monthly", Price: money.FromUnits(40), StartDate: day("2025-11-01"), EndDate: dayPtr("2025-11-30"), Status: domain.StatusActive},
		{ID: "orphan", MemberID: "m1", TypeID: "deleted", Price: money.FromUnits(10), StartDate: day("2025-09-01"), Status: domain.StatusPending},
	}
	for _, p := range periods {
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s): %v", p.ID, err)
		}
	}

	all, err := s.List(ctx, membership.PeriodFilter{MemberID: "m1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "nov" || all[2].ID != "orphan" {
		t.Fatalf("order = %+v", all)
	}
	if all[0].TypeName != "Monthly" || all[2].TypeName != "" || all[2].Label() != domain.DefaultTypeLabel {
		t.Errorf("type names = %q, %q", all[0].TypeName, all[2].TypeName)
	}
	if !all[0].StartDate.Equal(day("2025-11-01")) || all[0].EndDate == nil || !all[0].EndDate.Equal(day("2025-11-30")) {
		t.Errorf("dates = %v - %v", all[0].StartDate, all[0].EndDate)
	}
	if all[2].EndDate != nil {
		t.Error("open-ended period should read back nil end")
	}

	started, _ := s.List(ctx, membership.PeriodFilter{StartFrom: day("2025-11-01"), StartTo: day("2025-11-30")})
	if len(started) != 1 || started[0].ID != "nov" {
		t.Errorf("started in Nov = %+v", started)
	}
	ending, _ := s.List(ctx, membership.PeriodFilter{Status: domain.StatusActive, EndFrom: day("2025-10-31"), EndTo: day("2025-11-07")})
	if len(ending) != 1 || ending[0].ID != "oct" {
		t.Errorf("ending = %+v", ending)
	}
}

type countingTypeStore struct {
	membership.TypeStore
	lists atomic.Int32
}

func (c *countingTypeStore) List(ctx context.Context) ([]domain.Type, error) {
	c.lists.Add(1)
	time.Sleep(5 * time.Millisecond)
	return c.TypeStore.List(ctx)
}

// TestCachedTypeStore verifies warm reads skip the store and Save invalidates.
func TestCachedTypeStore(t *testing.T) {
	base := membership.NewTypeSQLiteStore(storagetest.Open(t))
	ctx := context.Background()
	base.Save(ctx, domain.Type{ID: "monthly", Name: "Monthly", DefaultPrice: money.FromUnits(40)})

	counting := &countingTypeStore{TypeStore: base}
	s := membership.NewCachedTypeStore(counting, cache.NewMemoryCache(), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.List(ctx); err != nil {
				t.Errorf("List: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := counting.lists.Load(); n < 1 || n > 8 {
		t.Errorf("store List calls = %d", n)
	}

	before := counting.lists.Load()
	got, err := s.GetByID(ctx, "monthly")
	if err != nil || got.DefaultPrice != money.FromUnits(40) {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
	if counting.lists.Load() != before {
		t.Error("warm GetByID should not hit the store")
	}

	if err := s.Save(ctx, domain.Type{ID: "annual", Name: "Annual"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	types, _ := s.List(ctx)
	if len(types) != 2 {
		t.Errorf("after Save types = %+v, want 2", types)
	}
}
