// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives the external tools that turn presentations into PDF
// (or legacy .ppt files into .pptx). Backends share one Converter interface;
// completion is observed by polling for the expected output file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/deck-merger/internal/workspace"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// Format is a conversion target.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// Defaults for WaitOptions.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultWaitTimeout  = 30 * time.Second
)

var (
	// ErrToolMissing means the conversion facility is not installed or not
	// reachable. It is reported before any side effect.
	ErrToolMissing = errors.New("conversion tool not available")

	// ErrUnsupportedFormat means the backend cannot produce the requested format.
	ErrUnsupportedFormat = errors.New("format not supported by converter")

	// ErrTimeout means the expected output did not appear before the ceiling.
	ErrTimeout = errors.New("timed out waiting for converted file")
)

// Converter runs one external conversion facility.
type Converter interface {
	// Name identifies the backend in logs and history.
	Name() string

	// Check verifies the facility is usable. Failures wrap ErrToolMissing.
	Check(ctx context.Context) error

	// Supports reports whether the backend can produce f.
	Supports(f Format) bool

	// Target returns the path the converted file will appear at. workDir is
	// a private directory for this item; backends that always write next
	// to the source ignore it.
	Target(src, workDir string, f Format) string

	// Convert starts the conversion of src into target and returns when the
	// external process has finished or failed.
	Convert(ctx context.Context, src, target string, f Format) error
}

// ConversionError reports the item whose conversion failed. A batch stops at
// the first one.
type ConversionError struct {
	Item string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s: %v", e.Item, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// WaitOptions bounds the completion poll.
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WaitOptionsFrom reads the poll settings from config, filling defaults.
func WaitOptionsFrom(cfg types.ConverterConfig) WaitOptions {
	o := WaitOptions{Interval: cfg.PollInterval, Timeout: cfg.WaitTimeout}
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultWaitTimeout
	}
	return o
}

// WaitForFile polls path until it exists as a non-empty regular file, the
// timeout elapses, or ctx is cancelled.
func WaitForFile(ctx context.Context, path string, opts WaitOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWaitTimeout
	}

	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()
	tick := time.NewTicker(opts.Interval)
	defer tick.Stop()

	for {
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %v", ErrTimeout, filepath.Base(path), opts.Timeout)
		case <-tick.C:
		}
	}
}

// Batch converts entries in order, one at a time, and returns the converted
// paths index-aligned with entries. Every expected output is registered with
// ws before its conversion starts. Per-item status lines go to w. The first
// failure aborts the batch with a *ConversionError.
func Batch(ctx context.Context, c Converter, entries []types.Entry, ws *workspace.Workspace, f Format, opts WaitOptions, w io.Writer) ([]string, error) {
	if !c.Supports(f) {
		return nil, fmt.Errorf("%s: %w: %s", c.Name(), ErrUnsupportedFormat, f)
	}

	out := make([]string, 0, len(entries))
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir, err := ws.ItemDir(i)
		if err != nil {
			return nil, err
		}
		target := c.Target(e.Path, dir, f)
		ws.Track(target)

		slog.Debug("converting", "backend", c.Name(), "item", e.Name, "target", target)
		start := time.Now()
		err = c.Convert(ctx, e.Path, target, f)
		if err == nil {
			err = WaitForFile(ctx, target, opts)
		}
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", e.Name, err)
			return nil, &ConversionError{Item: e.Name, Err: err}
		}

		slog.Debug("converted", "item", e.Name, "elapsed", time.Since(start))
		fmt.Fprintf(w, "converted: %s\n", e.Name)
		out = append(out, target)
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted (total: %d)\n", len(out), len(entries))
	return out, nil
}

// stem returns the file name of p without its extension.
func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
