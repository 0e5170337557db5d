package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under a root directory served at urlPrefix.
type DiskStore struct {
	root      string
	urlPrefix string
}

// NewDiskStore creates a store rooted at root. The directory is created on demand.
// PRE: root is writable
// POST: URLs are urlPrefix + "/" + objectPath
func NewDiskStore(root, urlPrefix string) *DiskStore {
	return &DiskStore{root: root, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Root returns the directory objects are written to.
func (d *DiskStore) Root() string {
	return d.root
}

// Put writes body to root/objectPath, replacing any existing file.
// PRE: objectPath is a relative slash-separated path
// POST: Returns the public URL of the object
func (d *DiskStore) Put(_ context.Context, objectPath, _ string, body io.Reader) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	buf, err := readLimited(body)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(d.root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return d.urlPrefix + "/" + p, nil
}

// Delete removes an object. Missing objects are ignored.
// PRE: objectPath is a relative slash-separated path
// POST: root/objectPath does not exist
func (d *DiskStore) Delete(_ context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(d.root, filepath.FromSlash(p)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
