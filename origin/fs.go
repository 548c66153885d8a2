package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jvb127/faultserve/types"
)

// FSStore serves origin blobs from a local directory. It backs local
// development and tests, and deployments where the dataset is mounted onto
// the host.
type FSStore struct {
	base string
}

// NewFSStore creates a store rooted at dir.
func NewFSStore(dir string) (*FSStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("origin directory is required")
	}
	return &FSStore{base: filepath.Clean(dir)}, nil
}

// Fetch opens the blob at path relative to the store root. Paths that
// resolve outside the root are rejected.
func (s *FSStore) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(s.base, filepath.FromSlash(path))
	if full != s.base && !strings.HasPrefix(full, s.base+string(filepath.Separator)) {
		return nil, fmt.Errorf("origin path %q escapes store root", path)
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("origin blob %q: %w", path, types.ErrNotFound)
		}
		return nil, fmt.Errorf("opening origin blob %q: %w", path, err)
	}
	return f, nil
}
