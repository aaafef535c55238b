// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc counts, renders, and concatenates PDF documents.
package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoPages is returned when a document opens but reports zero pages.
var ErrNoPages = errors.New("document has no pages")

var configOnce sync.Once

// pdfcpu writes a config directory under the user's home on first use
// unless told not to.
func disableConfigDir() {
	configOnce.Do(pdfapi.DisableConfigDir)
}

// PageCount returns the number of pages in the PDF at path. It asks pdfcpu
// first and falls back to a second, more lenient reader for files pdfcpu
// rejects.
func PageCount(path string) (int, error) {
	disableConfigDir()

	n, err := pdfapi.PageCountFile(path)
	if err == nil && n > 0 {
		return n, nil
	}

	n2, err2 := lenientPageCount(path)
	if err2 == nil && n2 > 0 {
		return n2, nil
	}

	if err == nil && err2 == nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoPages)
	}
	return 0, fmt.Errorf("counting pages of %s: %w", filepath.Base(path), errors.Join(err, err2))
}

func lenientPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// Merge concatenates inputs in order into a new temp file in dir and returns
// its path. On failure no file is left behind.
func Merge(inputs []string, dir string) (string, error) {
	if len(inputs) == 0 {
		return "", errors.New("no documents to merge")
	}
	disableConfigDir()

	tmp, err := os.CreateTemp(dir, ".merge-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := pdfapi.MergeCreateFile(inputs, tmpPath, false, nil); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("merging %d documents: %w", len(inputs), err)
	}
	return tmpPath, nil
}
