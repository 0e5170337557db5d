package profile_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"zefit/internal/adapters/storage/profile"
	"zefit/internal/adapters/storage/storagetest"
	domain "zefit/internal/domain/profile"
)

func TestSQLiteStore(t *testing.T) {
	s := profile.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	if _, err := s.GetByID(ctx, "u1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing profile err = %v, want sql.ErrNoRows", err)
	}
	if err := s.Save(ctx, domain.Profile{ID: "u1"}); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	got, err := s.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != (domain.Profile{ID: "u1"}) {
		t.Errorf("empty profile = %+v", got)
	}

	want := domain.Profile{ID: "u1", FullName: "Maja Kovač", Phone: "+385 91 000", AvatarURL: "/media/avatars/u1/me.png"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = s.GetByID(ctx, "u1")
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
