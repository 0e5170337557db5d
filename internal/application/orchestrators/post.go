package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"zefit/internal/domain/post"
)

// Upload is a file received from a form.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// ObjectStore stores uploads and resolves them to public URLs.
type ObjectStore interface {
	Put(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

// PostStore defines the post persistence needed by post orchestrators.
type PostStore interface {
	GetByID(ctx context.Context, id string) (post.Post, error)
	Save(ctx context.Context, p post.Post) error
	Delete(ctx context.Context, id string) error
}

// SavePostInput carries input for the orchestrator. An empty PostID creates.
type SavePostInput struct {
	PostID  string
	Title   string
	Content string
	Image   *Upload // nil keeps the current image
}

// SavePostDeps holds dependencies for SavePost.
type SavePostDeps struct {
	PostStore   PostStore
	ObjectStore ObjectStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSavePost creates or updates a post, uploading a new image when given.
// PRE: Title and Content are non-empty after trimming
// POST: Post persisted with UpdatedAt = now; the image URL changes only on upload
func ExecuteSavePost(ctx context.Context, input SavePostInput, deps SavePostDeps) (post.Post, error) {
	now := deps.Now()
	p := post.Post{ID: deps.GenerateID(), CreatedAt: now}
	event := "post_created"
	if input.PostID != "" {
		existing, err := deps.PostStore.GetByID(ctx, input.PostID)
		if err != nil {
			return post.Post{}, err
		}
		p = existing
		event = "post_updated"
	}
	p.Title = input.Title
	p.Content = input.Content
	p.UpdatedAt = now
	p.Normalize()
	if err := p.Validate(); err != nil {
		return post.Post{}, err
	}

	if input.Image != nil {
		url, err := deps.ObjectStore.Put(ctx, post.ImageObjectPath(now, input.Image.FileName), input.Image.ContentType, input.Image.Body)
		if err != nil {
			return post.Post{}, fmt.Errorf("upload post image: %w", err)
		}
		p.ImageURL = url
	}

	if err := deps.PostStore.Save(ctx, p); err != nil {
		return post.Post{}, fmt.Errorf("save post %s: %w", p.ID, err)
	}
	slog.Info("post_event", "event", event, "post_id", p.ID, "has_image", p.ImageURL != "")
	return p, nil
}

// DeletePostInput carries input for the orchestrator.
type DeletePostInput struct {
	PostID string
}

// DeletePostDeps holds dependencies for DeletePost.
type DeletePostDeps struct {
	PostStore PostStore
}

// ExecuteDeletePost removes a post.
// PRE: PostID is non-empty
// POST: The post no longer exists
func ExecuteDeletePost(ctx context.Context, input DeletePostInput, deps DeletePostDeps) error {
	if input.PostID == "" {
		return errors.New("post ID is required")
	}
	if err := deps.PostStore.Delete(ctx, input.PostID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	slog.Info("post_event", "event", "post_deleted", "post_id", input.PostID)
	return nil
}
