// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge runs the two merge operations end to end: converting the
// selected presentations to PDF and concatenating them behind a contents
// section, or combining the presentations themselves into one deck with
// contents slides. Every temporary artifact is removed on every exit path.
package merge

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

	"github.com/pdiddy/deck-merger/internal/contents"
	"github.com/pdiddy/deck-merger/internal/convert"
	"github.com/pdiddy/deck-merger/internal/deck"
	"github.com/pdiddy/deck-merger/internal/naming"
	"github.com/pdiddy/deck-merger/internal/pdfdoc"
	"github.com/pdiddy/deck-merger/internal/workspace"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var (
	// ErrNoFolder means no usable working folder was chosen.
	ErrNoFolder = errors.New("no working folder selected")

	// ErrNoSelection means the selection is empty.
	ErrNoSelection = errors.New("no presentations selected")

	// ErrNoOutputDir means the requested output directory is unusable.
	ErrNoOutputDir = errors.New("output directory not found")

	// ErrToolMissing means the external conversion facility is unavailable.
	ErrToolMissing = convert.ErrToolMissing

	// ErrAssembly wraps failures while counting, rendering, concatenating or
	// publishing, after conversion succeeded.
	ErrAssembly = errors.New("assembling merged output failed")
)

// Recorder stores completed merges.
type Recorder interface {
	Record(ctx context.Context, rec *types.MergeRecord) error
}

// Options configure one merge.
type Options struct {
	// Folder is the working folder. Outputs are written here unless OutDir
	// is set.
	Folder string
	OutDir string

	// Entries are the selected presentations in merge order.
	Entries []types.Entry
	Label   string

	// Converter turns presentations into PDF, and legacy .ppt files into
	// .pptx for the deck merge. The deck merge only needs it for .ppt inputs.
	Converter convert.Converter
	Wait      convert.WaitOptions

	PDFContents  pdfdoc.ContentsOptions
	DeckContents deck.ContentsOptions

	// ScratchDir is the parent of the temporary workspace (os.TempDir when empty).
	ScratchDir string

	Now      func() time.Time
	Progress io.Writer
	Logger   *slog.Logger
	History  Recorder
}

func (o *Options) defaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.PDFContents.Layout.PageSize == "" {
		o.PDFContents = pdfdoc.DefaultContentsOptions()
	}
	if o.DeckContents.LinesPerSlide <= 0 {
		o.DeckContents.LinesPerSlide = deck.DefaultLinesPerSlide
	}
}

func (o *Options) outDir() string {
	if o.OutDir != "" {
		return o.OutDir
	}
	return o.Folder
}

// Result describes a published merge.
type Result struct {
	Output        string
	Kind          types.OutputKind
	SectionLength int
	Lines         []types.ContentsLine
}

// checkInputs validates the folders and selection before any side effect.
func checkInputs(o *Options) error {
	if o.Folder == "" {
		return ErrNoFolder
	}
	fi, err := os.Stat(o.Folder)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoFolder, o.Folder)
	}
	if o.OutDir != "" {
		fi, err := os.Stat(o.OutDir)
		if err != nil || !fi.IsDir() {
			return fmt.Errorf("%w: %s", ErrNoOutputDir, o.OutDir)
		}
	}
	if len(o.Entries) == 0 {
		return ErrNoSelection
	}
	return nil
}

func checkConverter(ctx context.Context, c convert.Converter, f convert.Format) error {
	if c == nil {
		return fmt.Errorf("%w: no converter configured", ErrToolMissing)
	}
	if !c.Supports(f) {
		return fmt.Errorf("%w: %s cannot produce %s", ErrToolMissing, c.Name(), f)
	}
	return c.Check(ctx)
}

func openWorkspace(o *Options) (*workspace.Workspace, func(), error) {
	ws, err := workspace.New(o.ScratchDir, "")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			o.Logger.Warn("cleanup incomplete", "err", err)
		}
	}
	return ws, cleanup, nil
}

func assembly(err error) error {
	return fmt.Errorf("%w: %w", ErrAssembly, err)
}

// publish moves tmp onto the first free dated name in the output directory.
func publish(o *Options, tmp, ext string) (string, error) {
	reserved, err := naming.Reserve(o.outDir(), naming.BaseName(o.Now(), o.Label, ext))
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := naming.Publish(tmp, reserved); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return reserved, nil
}

func record(ctx context.Context, o *Options, res *Result, converter string) {
	if o.History == nil {
		return
	}
	rec := &types.MergeRecord{
		Kind:      res.Kind,
		Label:     naming.Sanitize(o.Label),
		Folder:    o.Folder,
		Output:    res.Output,
		Converter: converter,
		CreatedAt: o.Now(),
		Lines:     res.Lines,
	}
	if err := o.History.Record(ctx, rec); err != nil {
		o.Logger.Warn("could not record merge history", "err", err)
	}
}

func labels(entries []types.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// PDF converts every selected presentation to PDF, counts pages, renders the
// contents section and concatenates everything into one dated PDF.
func PDF(ctx context.Context, o Options) (*Result, error) {
	o.defaults()
	if err := checkInputs(&o); err != nil {
		return nil, err
	}
	if err := checkConverter(ctx, o.Converter, convert.FormatPDF); err != nil {
		return nil, err
	}

	ws, cleanup, err := openWorkspace(&o)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pdfs, err := convert.Batch(ctx, o.Converter, o.Entries, ws, convert.FormatPDF, o.Wait, o.Progress)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(pdfs))
	for i, p := range pdfs {
		n, err := pdfdoc.PageCount(p)
		if err != nil {
			o.Logger.Warn("unreadable converted document, listing with zero pages", "item", o.Entries[i].Name, "err", err)
			n = 0
		}
		counts[i] = n
	}

	items, err := contents.Items(labels(o.Entries), counts)
	if err != nil {
		return nil, assembly(err)
	}
	section, lines := contents.Build(items, o.PDFContents.Layout.LinesPerPage())

	toc := filepath.Join(ws.Dir(), "contents.pdf")
	if err := pdfdoc.RenderContents(lines, o.PDFContents, toc); err != nil {
		return nil, assembly(err)
	}

	inputs := []string{toc}
	for i, p := range pdfs {
		if counts[i] > 0 {
			inputs = append(inputs, p)
		}
	}

	tmp, err := pdfdoc.Merge(inputs, o.outDir())
	if err != nil {
		return nil, assembly(err)
	}
	out, err := publish(&o, tmp, ".pdf")
	if err != nil {
		return nil, assembly(err)
	}

	res := &Result{Output: out, Kind: types.OutputPDF, SectionLength: section, Lines: lines}
	o.Logger.Info("merged pdf", "output", out, "items", len(lines), "contents_pages", section)
	record(ctx, &o, res, o.Converter.Name())
	return res, nil
}

func isLegacy(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ppt")
}

// NeedsConverter reports whether Deck has to convert any of entries, which
// is the case for legacy .ppt files.
func NeedsConverter(entries []types.Entry) bool {
	for _, e := range entries {
		if isLegacy(e.Path) {
			return true
		}
	}
	return false
}

// Deck combines the selected presentations into one dated .pptx with
// contents slides at the front. Legacy .ppt inputs are converted first.
func Deck(ctx context.Context, o Options) (*Result, error) {
	o.defaults()
	if err := checkInputs(&o); err != nil {
		return nil, err
	}

	var legacy []types.Entry
	var legacyIdx []int
	for i, e := range o.Entries {
		if isLegacy(e.Path) {
			legacy = append(legacy, e)
			legacyIdx = append(legacyIdx, i)
		}
	}
	if len(legacy) > 0 {
		if err := checkConverter(ctx, o.Converter, convert.FormatPPTX); err != nil {
			return nil, err
		}
	}

	ws, cleanup, err := openWorkspace(&o)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	paths := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		paths[i] = e.Path
	}
	converter := ""
	if len(legacy) > 0 {
		converted, err := convert.Batch(ctx, o.Converter, legacy, ws, convert.FormatPPTX, o.Wait, o.Progress)
		if err != nil {
			return nil, err
		}
		for j, i := range legacyIdx {
			paths[i] = converted[j]
		}
		converter = o.Converter.Name()
	}

	counts := make([]int, len(paths))
	for i, p := range paths {
		n, err := deck.SlideCount(p)
		if err != nil {
			return nil, assembly(fmt.Errorf("%s: %w", o.Entries[i].Name, err))
		}
		counts[i] = n
	}

	items, err := contents.Items(labels(o.Entries), counts)
	if err != nil {
		return nil, assembly(err)
	}
	section, lines := contents.Build(items, o.DeckContents.LinesPerSlide)

	tmp, err := deck.Merge(paths, lines, o.DeckContents, o.outDir())
	if err != nil {
		return nil, assembly(err)
	}
	out, err := publish(&o, tmp, ".pptx")
	if err != nil {
		return nil, assembly(err)
	}

	res := &Result{Output: out, Kind: types.OutputDeck, SectionLength: section, Lines: lines}
	o.Logger.Info("merged deck", "output", out, "items", len(lines), "contents_slides", section)
	record(ctx, &o, res, converter)
	return res, nil
}
