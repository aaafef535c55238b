// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming builds dated output file names and picks the first free
// variant when a name is already taken.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the date prefix of every output name.
const DateLayout = "20060102"

// maxSuffix bounds the search for a free name.
const maxSuffix = 10000

// DefaultLabel is used when a label sanitizes to nothing.
const DefaultLabel = "merged"

// Sanitize strips characters that are not allowed in file names on common
// platforms. Letters of any script are kept.
func Sanitize(label string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(label) {
		switch {
		case r < 0x20:
			continue
		case strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		case r == ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if out == "" {
		return DefaultLabel
	}
	return out
}

// BaseName returns "<YYYYMMDD><label><ext>" for the given day.
func BaseName(day time.Time, label, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return day.Format(DateLayout) + Sanitize(label) + ext
}

// Candidate returns the n-th name variant: n == 0 is the base name itself,
// n > 0 appends "_n" to the stem.
func Candidate(dir, base string, n int) string {
	if n == 0 {
		return filepath.Join(dir, base)
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
}

// Reserve claims the first free variant of base in dir by creating an
// empty placeholder exclusively. The caller renames its finished output over
// the placeholder, or removes it on failure. Existing files are never
// touched.
func Reserve(dir, base string) (string, error) {
	for n := 0; n < maxSuffix; n++ {
		p := Candidate(dir, base, n)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if cerr := f.Close(); cerr != nil {
				os.Remove(p)
				return "", fmt.Errorf("closing placeholder %s: %w", p, cerr)
			}
			return p, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", fmt.Errorf("reserving %s: %w", p, err)
	}
	return "", fmt.Errorf("no free name for %s in %s after %d attempts", base, dir, maxSuffix)
}

// Publish moves a finished temporary file onto its reserved name. On failure
// the placeholder is removed so no empty output is left behind.
func Publish(tmpPath, reserved string) error {
	if err := os.Rename(tmpPath, reserved); err != nil {
		os.Remove(reserved)
		return fmt.Errorf("publishing %s: %w", reserved, err)
	}
	return nil
}
