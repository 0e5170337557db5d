package post

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
)

// ImageFolder is the object-store prefix for post images.
const ImageFolder = "posts"

// Domain errors
var (
	ErrEmptyTitle     = errors.New("post title cannot be empty")
	ErrTitleTooLong   = errors.New("post title cannot exceed 200 characters")
	ErrEmptyContent   = errors.New("post content cannot be empty")
	ErrContentTooLong = errors.New("post content is too long")
	ErrNotFound       = errors.New("post not found")
)

// Post is a news item shown to members. Content is markdown.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims title and content in place.
// POST: Title and Content carry no leading or trailing whitespace
func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
}

// Validate checks if the Post has valid data.
// PRE: Post struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyContent
	}
	if len(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// ImageObjectPath builds the storage path for an uploaded image:
// posts/<unix ms>-<file name with spaces replaced by underscores>.
func ImageObjectPath(now time.Time, fileName string) string {
	name := strings.ReplaceAll(path.Base(strings.ReplaceAll(fileName, "\\", "/")), " ", "_")
	return fmt.Sprintf("%s/%d-%s", ImageFolder, now.UnixMilli(), name)
}
