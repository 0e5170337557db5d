// Package objectstore uploads files by path and hands back a stable public URL.
package objectstore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 5 << 20

// Errors
var (
	ErrInvalidPath = errors.New("object path must be relative and free of '..'")
	ErrTooLarge    = errors.New("file exceeds the 5 MB upload limit")
)

// Store puts objects and resolves them to public URLs.
type Store interface {
	Put(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// cleanPath validates an object path such as "posts/1700000000000-a_b.png".
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." || part == "" {
			return "", ErrInvalidPath
		}
	}
	return path.Clean(p), nil
}

// readLimited reads body up to MaxUploadBytes.
func readLimited(body io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	return buf, nil
}
