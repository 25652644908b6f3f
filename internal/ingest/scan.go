// Package ingest discovers extractable documents on the local filesystem.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
)

// ScanStats summarizes one directory walk.
type ScanStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// ScanDirectory walks root recursively and returns the storage keys (paths
// relative to root, slash-separated) of every file with a supported
// extension. Hidden files and directories are skipped.
func ScanDirectory(root string) ([]string, ScanStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ScanStats{}, errors.New("root path is required")
	}

	var keys []string
	var stats ScanStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++

		if constants.MapExtToFormat(filepath.Ext(path)) == constants.Unknown {
			stats.Skipped++
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		stats.Matched++
		return nil
	})
	if err != nil {
		return keys, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return keys, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
