// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace owns the temporary artifacts of one merge operation: a
// private scratch directory and any intermediate files written elsewhere.
// Cleanup removes everything the operation created and nothing that existed
// before it.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type tracked struct {
	path    string
	existed bool
}

// Workspace tracks intermediate artifacts. The zero value is not usable;
// call New. A Workspace belongs to one merge and is not safe for concurrent
// use.
type Workspace struct {
	dir     string
	tracked []tracked
	done    bool
}

// New creates a scratch directory under parent (os.TempDir() when empty).
func New(parent, pattern string) (*Workspace, error) {
	if pattern == "" {
		pattern = "deck-merger-*"
	}
	dir, err := os.MkdirTemp(parent, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the scratch directory.
func (w *Workspace) Dir() string { return w.dir }

// ItemDir returns (and creates) a per-item subdirectory so outputs of sources
// sharing a base name never collide.
func (w *Workspace) ItemDir(i int) (string, error) {
	d := filepath.Join(w.dir, fmt.Sprintf("%03d", i))
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("creating item directory: %w", err)
	}
	return d, nil
}

// Track registers path as a possible intermediate artifact. It records
// whether the path exists right now; Cleanup only removes it if it did not.
// Track must be called before the artifact is produced. Tracking the same
// path twice keeps the first observation.
func (w *Workspace) Track(path string) {
	for _, t := range w.tracked {
		if t.path == path {
			return
		}
	}
	_, err := os.Lstat(path)
	w.tracked = append(w.tracked, tracked{path: path, existed: err == nil})
}

// Existed reports whether a tracked path existed before it was tracked.
func (w *Workspace) Existed(path string) bool {
	for _, t := range w.tracked {
		if t.path == path {
			return t.existed
		}
	}
	return false
}

// Cleanup removes the tracked artifacts that did not pre-exist and the
// scratch directory. It is safe to call more than once.
func (w *Workspace) Cleanup() error {
	if w.done {
		return nil
	}
	w.done = true

	var errs []error
	for _, t := range w.tracked {
		if t.existed {
			continue
		}
		if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", t.path, err))
		}
	}
	if err := os.RemoveAll(w.dir); err != nil {
		errs = append(errs, fmt.Errorf("removing workspace %s: %w", w.dir, err))
	}
	return errors.Join(errs...)
}
