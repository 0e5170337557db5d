package post_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"zefit/internal/adapters/storage/post"
	"zefit/internal/adapters/storage/storagetest"
	domain "zefit/internal/domain/post"
)

func TestSQLiteStore(t *testing.T) {
	s := post.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	created := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	older := domain.Post{ID: "p1", Title: "Holiday hours", Content: "Closed on **1 Nov**.", CreatedAt: created, UpdatedAt: created}
	newer := domain.Post{ID: "p2", Title: "New class", Content: "HIIT", ImageURL: "/media/posts/1-a.png", CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour)}
	for _, p := range []domain.Post{older, newer} {
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s): %v", p.ID, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p2" || list[0].ImageURL != "/media/posts/1-a.png" {
		t.Fatalf("list = %+v", list)
	}

	edit := older
	edit.Title = "Holiday hours (updated)"
	edit.CreatedAt = created.AddDate(1, 0, 0)
	edit.UpdatedAt = created.Add(2 * time.Hour)
	if err := s.Save(ctx, edit); err != nil {
		t.Fatalf("Save edit: %v", err)
	}
	got, _ := s.GetByID(ctx, "p1")
	if got.Title != "Holiday hours (updated)" || !got.UpdatedAt.Equal(edit.UpdatedAt) {
		t.Errorf("edited = %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}

	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "p1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second Delete err = %v, want sql.ErrNoRows", err)
	}
	if _, err := s.GetByID(ctx, "p1"); err == nil {
		t.Error("deleted post still readable")
	}
}
