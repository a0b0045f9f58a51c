package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Prober reports whether a path is taken.
type Prober interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// OSProber checks the local filesystem.
type OSProber struct{}

// Exists stats path. A missing file is not an error.
func (OSProber) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// FSProber checks an fs.FS rooted at Root. Paths are made relative to Root
// before lookup; a path outside Root is reported as an error.
type FSProber struct {
	FS   fs.FS
	Root string
}

// Exists stats path inside the wrapped filesystem.
func (p FSProber) Exists(_ context.Context, path string) (bool, error) {
	name := filepath.Clean(path)
	if p.Root != "" {
		rel, err := filepath.Rel(filepath.Clean(p.Root), name)
		if err != nil {
			return false, fmt.Errorf("output: %s is outside %s: %w", path, p.Root, err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false, fmt.Errorf("output: %s is outside %s", path, p.Root)
		}
		name = rel
	}
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if name == "" {
		name = "."
	}
	_, err := fs.Stat(p.FS, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
