package post

import (
	"context"
	"database/sql"
	"fmt"

	"zefit/internal/adapters/storage"
	domain "zefit/internal/domain/post"
)

const postColumns = "id, title, content, image_url, created_at, updated_at"

// SQLiteStore implements Store over any SQLDB.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PostStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Post by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM post WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return domain.Post{}, fmt.Errorf("post not found: %w", err)
	}
	return p, err
}

// Save persists a Post (insert or update). created_at is set once.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO post (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title,
		   content=excluded.content,
		   image_url=excluded.image_url,
		   updated_at=excluded.updated_at`,
		p.ID, p.Title, p.Content, storage.NullString(p.ImageURL),
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt))
	return err
}

// Delete removes a Post.
// PRE: id is non-empty
// POST: No post with id exists; deleting a missing post is an error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM post WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post not found: %w", sql.ErrNoRows)
	}
	return nil
}

// List returns all posts, newest first.
// PRE: none
// POST: Returns every post (possibly empty)
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+" FROM post ORDER BY created_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPost(scan func(dest ...any) error) (domain.Post, error) {
	var p domain.Post
	var imageURL sql.NullString
	var createdAt, updatedAt string
	if err := scan(&p.ID, &p.Title, &p.Content, &imageURL, &createdAt, &updatedAt); err != nil {
		return domain.Post{}, err
	}
	p.ImageURL = imageURL.String
	var err error
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Post{}, fmt.Errorf("post %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Post{}, fmt.Errorf("post %s: %w", p.ID, err)
	}
	return p, nil
}
