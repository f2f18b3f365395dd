// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/skiphire/internal/ports/secondary"
)

// PhotoStore implements secondary.PhotoStore by writing photos under a base directory.
type PhotoStore struct {
	basePath string
}

// NewPhotoStore creates a new filesystem photo store.
// If basePath is empty, defaults to ~/.skiphire/photos.
func NewPhotoStore(basePath string) (*PhotoStore, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		basePath = filepath.Join(home, ".skiphire", "photos")
	}
	return &PhotoStore{basePath: basePath}, nil
}

// Upload writes the photo to <base>/<session>/<filename>.
func (s *PhotoStore) Upload(ctx context.Context, p secondary.PhotoUpload) (*secondary.PhotoReceipt, error) {
	name := cleanName(p.Filename)
	if name == "" {
		return nil, fmt.Errorf("invalid photo filename %q", p.Filename)
	}
	if p.SessionID == "" || cleanName(p.SessionID) != p.SessionID {
		return nil, fmt.Errorf("invalid session id %q", p.SessionID)
	}

	dir := filepath.Join(s.basePath, p.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo file: %w", err)
	}

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: p.Content}); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write photo: %w", err)
	}

	return &secondary.PhotoReceipt{Location: path}, nil
}

// BasePath returns the directory photos are written under.
func (s *PhotoStore) BasePath() string {
	return s.basePath
}

// cleanName strips any directory part so uploads stay inside the session directory.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Ensure PhotoStore implements the interface
var _ secondary.PhotoStore = (*PhotoStore)(nil)
