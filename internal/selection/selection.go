// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection discovers candidate presentations in a folder and keeps
// the user's ordered selection of them.
package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/deck-merger/pkg/types"
)

// extensions lists the recognized presentation extensions (lower case).
var extensions = map[string]bool{
	".ppt":  true,
	".pptx": true,
}

// IsPresentation reports whether name has a recognized presentation extension.
func IsPresentation(name string) bool {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Scan lists the presentation files directly inside dir, sorted by name.
// Subdirectories and office lock files (~$name.pptx) are ignored.
func Scan(dir string) ([]types.Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving folder %s: %w", dir, err)
	}
	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", abs, err)
	}

	var entries []types.Entry
	for _, de := range dirEntries {
		name := de.Name()
		if !IsPresentation(name) || strings.HasPrefix(name, "~$") {
			continue
		}
		if !de.Type().IsRegular() {
			continue
		}
		entries = append(entries, types.Entry{Name: name, Path: filepath.Join(abs, name)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Selection is an ordered list of entries with unique paths. List order is
// output order.
type Selection struct {
	entries []types.Entry
}

// New returns an empty selection.
func New() *Selection {
	return &Selection{}
}

// Len returns the number of selected entries.
func (s *Selection) Len() int { return len(s.entries) }

// Entries returns a copy of the selected entries in order.
func (s *Selection) Entries() []types.Entry {
	out := make([]types.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Contains reports whether an entry with the given path is selected.
func (s *Selection) Contains(path string) bool {
	for _, e := range s.entries {
		if e.Path == path {
			return true
		}
	}
	return false
}

// Add appends e unless an entry with the same path is already selected.
// It reports whether the selection changed.
func (s *Selection) Add(e types.Entry) bool {
	if s.Contains(e.Path) {
		return false
	}
	s.entries = append(s.entries, e)
	return true
}

// AddAll appends every candidate not yet selected and returns how many were added.
func (s *Selection) AddAll(candidates []types.Entry) int {
	added := 0
	for _, e := range candidates {
		if s.Add(e) {
			added++
		}
	}
	return added
}

// Remove drops the entry at index i.
func (s *Selection) Remove(i int) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("remove: index %d out of range [0,%d)", i, len(s.entries))
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// RemoveAll drops the entries at the given indices, which refer to positions
// before any removal. Nothing is removed if an index is out of range.
func (s *Selection) RemoveAll(idx []int) error {
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(s.entries) {
			return fmt.Errorf("remove: index %d out of range [0,%d)", i, len(s.entries))
		}
		drop[i] = true
	}
	kept := s.entries[:0:0]
	for i, e := range s.entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Move takes the entry at index from and reinserts it at index to, shifting
// the entries in between. This is the drag-reorder operation.
func (s *Selection) Move(from, to int) error {
	n := len(s.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move: indices %d -> %d out of range [0,%d)", from, to, n)
	}
	if from == to {
		return nil
	}
	e := s.entries[from]
	if from < to {
		copy(s.entries[from:to], s.entries[from+1:to+1])
	} else {
		copy(s.entries[to+1:from+1], s.entries[to:from])
	}
	s.entries[to] = e
	return nil
}

// Reorder rearranges the selection so that position i holds the entry
// previously at perm[i]. perm must be a permutation of 0..Len()-1; otherwise
// the selection is left unchanged.
func (s *Selection) Reorder(perm []int) error {
	n := len(s.entries)
	if len(perm) != n {
		return fmt.Errorf("reorder: got %d positions for %d entries", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return fmt.Errorf("reorder: %v is not a permutation of %d entries", perm, n)
		}
		seen[p] = true
	}
	reordered := make([]types.Entry, n)
	for i, p := range perm {
		reordered[i] = s.entries[p]
	}
	s.entries = reordered
	return nil
}

// Resolve maps references to candidates. A reference is either a display
// name or a 1-based index into candidates.
func Resolve(candidates []types.Entry, refs []string) ([]types.Entry, error) {
	byName := make(map[string]types.Entry, len(candidates))
	for _, c := range candidates {
		byName[c.Name] = c
	}

	out := make([]types.Entry, 0, len(refs))
	for _, ref := range refs {
		if e, ok := byName[ref]; ok {
			out = append(out, e)
			continue
		}
		if e, ok := byName[filepath.Base(ref)]; ok {
			out = append(out, e)
			continue
		}
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(candidates) {
			return nil, fmt.Errorf("no presentation named or numbered %q", ref)
		}
		out = append(out, candidates[n-1])
	}
	return out, nil
}

// ParseMove parses a "from:to" pair of 1-based positions into 0-based indices.
func ParseMove(s string) (from, to int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("move %q: want from:to", s)
	}
	from, err = strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("move %q: %w", s, err)
	}
	to, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("move %q: %w", s, err)
	}
	return from - 1, to - 1, nil
}

// ParseOrder parses a comma-separated list of 1-based positions, such as
// "3,1,2", into 0-based indices for Reorder.
func ParseOrder(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("order %q: %w", s, err)
		}
		out = append(out, n-1)
	}
	return out, nil
}
