// Package storage resolves content-addressable paths to raw bytes. The
// extraction pipeline never assumes bytes are already in memory: callers hand
// the router a path and the router pulls it through a Downloader.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Downloader is the storage collaborator boundary.
type Downloader interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// LocalDir serves files from a local directory root, for batch runs and
// tests. Paths are relative keys, same as in object storage.
type LocalDir struct {
	root string
}

func NewLocalDir(root string) *LocalDir {
	return &LocalDir{root: root}
}

func (l *LocalDir) Download(_ context.Context, path string) ([]byte, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(l.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(l.root)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("path escapes storage root: %q", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
