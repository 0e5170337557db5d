package visit_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"zefit/internal/adapters/storage/storagetest"
	"zefit/internal/adapters/storage/visit"
	domain "zefit/internal/domain/visit"
)

func TestSQLiteStore_CheckInCheckOut(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedMember(t, db, "m1", "Ana")
	s := visit.NewSQLiteStore(db)
	ctx := context.Background()

	if _, err := s.GetOpenByMember(ctx, "m1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetOpenByMember on empty = %v, want sql.ErrNoRows", err)
	}

	arrived := time.Date(2025, 11, 3, 17, 30, 0, 0, time.UTC)
	v := domain.Visit{ID: "v1", MemberID: "m1", ArrivedAt: arrived}
	if err := s.Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	open, err := s.GetOpenByMember(ctx, "m1")
	if err != nil {
		t.Fatalf("GetOpenByMember: %v", err)
	}
	if open.ID != "v1" || !open.ArrivedAt.Equal(arrived) || open.DepartedAt != nil {
		t.Errorf("open = %+v", open)
	}

	if err := open.Depart(arrived.Add(time.Hour)); err != nil {
		t.Fatalf("Depart: %v", err)
	}
	if err := s.Save(ctx, open); err != nil {
		t.Fatalf("Save departure: %v", err)
	}
	if _, err := s.GetOpenByMember(ctx, "m1"); err == nil {
		t.Error("visit should be closed")
	}
	got, _ := s.GetByID(ctx, "v1")
	if got.DepartedAt == nil || !got.DepartedAt.Equal(arrived.Add(time.Hour)) {
		t.Errorf("DepartedAt = %v", got.DepartedAt)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedMember(t, db, "m1", "Ana")
	storagetest.SeedMember(t, db, "m2", "Bo")
	s := visit.NewSQLiteStore(db)
	ctx := context.Background()

	base := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	left := base.Add(time.Hour)
	for _, v := range []domain.Visit{
		{ID: "a", MemberID: "m1", ArrivedAt: base, DepartedAt: &left},
		{ID: "b", MemberID: "m2", ArrivedAt: base.Add(30 * time.Minute)},
		{ID: "c", MemberID: "m1", ArrivedAt: base.AddDate(0, 0, 1)},
	} {
		if err := s.Save(ctx, v); err != nil {
			t.Fatalf("Save(%s): %v", v.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter visit.ListFilter
		want   []string
	}{
		{"all", visit.ListFilter{}, []string{"c", "b", "a"}},
		{"member", visit.ListFilter{MemberID: "m1"}, []string{"c", "a"}},
		{"open", visit.ListFilter{OpenOnly: true}, []string{"c", "b"}},
		{"first day", visit.ListFilter{ArrivedFrom: base, ArrivedTo: base.Add(24*time.Hour - time.Nanosecond)}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, v := range got {
				ids = append(ids, v.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}
