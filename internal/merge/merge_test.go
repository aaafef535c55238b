// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-merger/internal/convert"
	"github.com/pdiddy/deck-merger/internal/deck"
	"github.com/pdiddy/deck-merger/internal/deck/decktest"
	"github.com/pdiddy/deck-merger/internal/pdfdoc"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var day = time.Date(2026, 3, 1, 15, 4, 0, 0, time.UTC)

// pageConverter writes a real PDF with a fixed page count per source.
type pageConverter struct {
	pages   map[string]int   // source base name -> pages, default 1
	fail    map[string]error // source base name -> Convert error
	formats []convert.Format
	nextTo  bool // write the target next to the source
	checkE  error
	calls   []string
}

func (c *pageConverter) Name() string { return "fake" }

func (c *pageConverter) Check(context.Context) error { return c.checkE }

func (c *pageConverter) Supports(f convert.Format) bool {
	if c.formats == nil {
		return f == convert.FormatPDF
	}
	for _, x := range c.formats {
		if x == f {
			return true
		}
	}
	return false
}

func (c *pageConverter) Target(src, workDir string, f convert.Format) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if c.nextTo {
		return filepath.Join(filepath.Dir(src), stem+"."+string(f))
	}
	return filepath.Join(workDir, stem+"."+string(f))
}

func (c *pageConverter) Convert(_ context.Context, src, target string, f convert.Format) error {
	base := filepath.Base(src)
	c.calls = append(c.calls, base)
	if err := c.fail[base]; err != nil {
		return err
	}
	if f == convert.FormatPPTX {
		return os.WriteFile(target, mustRead(src), 0o644)
	}
	n, ok := c.pages[base]
	if !ok {
		n = 1
	}
	if n == 0 {
		return os.WriteFile(target, []byte("%PDF-1.4 broken"), 0o644)
	}
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < n; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, fmt.Sprintf("%s page %d", base, i+1))
	}
	return pdf.OutputFileAndClose(target)
}

func mustRead(p string) []byte {
	b, err := os.ReadFile(p)
	if err != nil {
		panic(err)
	}
	return b
}

type memRecorder struct {
	recs []types.MergeRecord
	err  error
}

func (m *memRecorder) Record(_ context.Context, r *types.MergeRecord) error {
	if m.err != nil {
		return m.err
	}
	r.ID = int64(len(m.recs) + 1)
	m.recs = append(m.recs, *r)
	return nil
}

func folderWith(t *testing.T, names ...string) (string, []types.Entry) {
	t.Helper()
	dir := t.TempDir()
	out := make([]types.Entry, len(names))
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("deck "+n), 0o644))
		out[i] = types.Entry{Name: n, Path: p}
	}
	return dir, out
}

func baseOptions(t *testing.T, folder string, entries []types.Entry, c convert.Converter) Options {
	t.Helper()
	return Options{
		Folder:     folder,
		Entries:    entries,
		Label:      "weekly",
		Converter:  c,
		Wait:       convert.WaitOptions{Interval: 5 * time.Millisecond, Timeout: 500 * time.Millisecond},
		ScratchDir: t.TempDir(),
		Now:        func() time.Time { return day },
		Progress:   &bytes.Buffer{},
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, d := range des {
		names = append(names, d.Name())
	}
	return names
}

func TestPDF_Preconditions(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx")

	tests := []struct {
		name   string
		mutate func(*Options)
		wantIs error
	}{
		{name: "no folder", mutate: func(o *Options) { o.Folder = "" }, wantIs: ErrNoFolder},
		{name: "missing folder", mutate: func(o *Options) { o.Folder = filepath.Join(folder, "gone") }, wantIs: ErrNoFolder},
		{name: "empty selection", mutate: func(o *Options) { o.Entries = nil }, wantIs: ErrNoSelection},
		{name: "missing output dir", mutate: func(o *Options) { o.OutDir = filepath.Join(folder, "out") }, wantIs: ErrNoOutputDir},
		{name: "no converter", mutate: func(o *Options) { o.Converter = nil }, wantIs: ErrToolMissing},
		{
			name:   "tool unavailable",
			mutate: func(o *Options) { o.Converter = &pageConverter{checkE: fmt.Errorf("%w: soffice", convert.ErrToolMissing)} },
			wantIs: ErrToolMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &pageConverter{}
			o := baseOptions(t, folder, entries, conv)
			tt.mutate(&o)
			_, err := PDF(context.Background(), o)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Empty(t, listDir(t, o.ScratchDir))
			assert.Empty(t, conv.calls)
		})
	}
	assert.ElementsMatch(t, []string{"a.pptx"}, listDir(t, folder))
}

func TestPDF_Success(t *testing.T) {
	folder, entries := folderWith(t, "intro.pptx", "body.ppt", "outro.pptx")
	conv := &pageConverter{pages: map[string]int{"intro.pptx": 2, "body.ppt": 3, "outro.pptx": 1}}
	hist := &memRecorder{}

	o := baseOptions(t, folder, entries, conv)
	o.History = hist
	res, err := PDF(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(folder, "20260301weekly.pdf"), res.Output)
	assert.Equal(t, types.OutputPDF, res.Kind)
	assert.Equal(t, 1, res.SectionLength)
	assert.Equal(t, []types.ContentsLine{
		{Label: "intro.pptx", Count: 2, Start: 2},
		{Label: "body.ppt", Count: 3, Start: 4},
		{Label: "outro.pptx", Count: 1, Start: 7},
	}, res.Lines)

	n, err := pdfdoc.PageCount(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	assert.Equal(t, []string{"intro.pptx", "body.ppt", "outro.pptx"}, conv.calls)
	assert.Empty(t, listDir(t, o.ScratchDir))
	assert.ElementsMatch(t, []string{"intro.pptx", "body.ppt", "outro.pptx", "20260301weekly.pdf"}, listDir(t, folder))

	require.Len(t, hist.recs, 1)
	assert.Equal(t, res.Output, hist.recs[0].Output)
	assert.Equal(t, 6, hist.recs[0].TotalUnits())
	assert.Equal(t, "fake", hist.recs[0].Converter)
}

func TestPDF_NameCollision(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx")
	existing := filepath.Join(folder, "20260301weekly.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	res, err := PDF(context.Background(), baseOptions(t, folder, entries, &pageConverter{}))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(folder, "20260301weekly_1.pdf"), res.Output)
	assert.Equal(t, []byte("keep me"), mustRead(existing))
}

func TestPDF_OutDir(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx")
	out := t.TempDir()

	o := baseOptions(t, folder, entries, &pageConverter{})
	o.OutDir = out
	res, err := PDF(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, out, filepath.Dir(res.Output))
	assert.ElementsMatch(t, []string{"a.pptx"}, listDir(t, folder))
}

func TestPDF_UnreadableItemListedWithZeroPages(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx", "bad.pptx", "c.pptx")
	conv := &pageConverter{pages: map[string]int{"a.pptx": 2, "bad.pptx": 0, "c.pptx": 1}}

	res, err := PDF(context.Background(), baseOptions(t, folder, entries, conv))
	require.NoError(t, err)

	assert.Equal(t, []types.ContentsLine{
		{Label: "a.pptx", Count: 2, Start: 2},
		{Label: "bad.pptx", Count: 0, Start: 4},
		{Label: "c.pptx", Count: 1, Start: 4},
	}, res.Lines)

	n, err := pdfdoc.PageCount(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPDF_ConversionFailureLeavesNothing(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx", "b.pptx", "c.pptx")
	conv := &pageConverter{fail: map[string]error{"b.pptx": errors.New("exit status 1")}}
	hist := &memRecorder{}

	o := baseOptions(t, folder, entries, conv)
	o.History = hist
	_, err := PDF(context.Background(), o)
	require.Error(t, err)

	var ce *convert.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "b.pptx", ce.Item)

	assert.Equal(t, []string{"a.pptx", "b.pptx"}, conv.calls)
	assert.Empty(t, listDir(t, o.ScratchDir))
	assert.ElementsMatch(t, []string{"a.pptx", "b.pptx", "c.pptx"}, listDir(t, folder))
	assert.Empty(t, hist.recs)
}

func TestPDF_TargetsNextToSourceAreCleanedUp(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx", "b.pptx")
	// b.pdf belongs to the user and must survive.
	prior := filepath.Join(folder, "b.pdf")
	require.NoError(t, os.WriteFile(prior, []byte("user file"), 0o644))

	conv := &pageConverter{nextTo: true}
	res, err := PDF(context.Background(), baseOptions(t, folder, entries, conv))
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(folder, "a.pdf"))
	assert.FileExists(t, prior)
	assert.FileExists(t, res.Output)
}

func TestPDF_HistoryFailureIsNotFatal(t *testing.T) {
	folder, entries := folderWith(t, "a.pptx")
	o := baseOptions(t, folder, entries, &pageConverter{})
	o.History = &memRecorder{err: errors.New("disk full")}

	res, err := PDF(context.Background(), o)
	require.NoError(t, err)
	assert.FileExists(t, res.Output)
}

func writeDecks(t *testing.T, decks map[string]int) (string, []types.Entry) {
	t.Helper()
	dir := t.TempDir()
	var out []types.Entry
	for _, name := range []string{"one.pptx", "two.pptx", "old.ppt"} {
		n, ok := decks[name]
		if !ok {
			continue
		}
		slides := make([]string, n)
		for i := range slides {
			slides[i] = fmt.Sprintf("%s slide %d", name, i+1)
		}
		p := filepath.Join(dir, name)
		decktest.Deck{Slides: slides}.Write(t, p)
		out = append(out, types.Entry{Name: name, Path: p})
	}
	return dir, out
}

func TestDeck_Success(t *testing.T) {
	folder, entries := writeDecks(t, map[string]int{"one.pptx": 2, "two.pptx": 3})
	hist := &memRecorder{}

	o := baseOptions(t, folder, entries, nil)
	o.Label = "all hands"
	o.History = hist
	res, err := Deck(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(folder, "20260301all_hands.pptx"), res.Output)
	assert.Equal(t, types.OutputDeck, res.Kind)
	assert.Equal(t, []types.ContentsLine{
		{Label: "one.pptx", Count: 2, Start: 2},
		{Label: "two.pptx", Count: 3, Start: 4},
	}, res.Lines)

	n, err := deck.SlideCount(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.Len(t, hist.recs, 1)
	assert.Empty(t, hist.recs[0].Converter)
	assert.Empty(t, listDir(t, o.ScratchDir))
}

func TestNeedsConverter(t *testing.T) {
	assert.False(t, NeedsConverter(nil))
	assert.False(t, NeedsConverter([]types.Entry{{Name: "a.pptx", Path: "/d/a.pptx"}}))
	assert.True(t, NeedsConverter([]types.Entry{{Name: "a.pptx", Path: "/d/a.pptx"}, {Name: "b.PPT", Path: "/d/b.PPT"}}))
}

func TestDeck_MissingOutputDir(t *testing.T) {
	folder, entries := writeDecks(t, map[string]int{"one.pptx": 1})
	o := baseOptions(t, folder, entries, nil)
	o.OutDir = filepath.Join(folder, "nowhere")

	_, err := Deck(context.Background(), o)
	assert.ErrorIs(t, err, ErrNoOutputDir)
	assert.ElementsMatch(t, []string{"one.pptx"}, listDir(t, folder))
}

func TestDeck_LegacyNeedsConverter(t *testing.T) {
	folder, entries := writeDecks(t, map[string]int{"one.pptx": 1, "old.ppt": 2})

	tests := []struct {
		name string
		conv convert.Converter
	}{
		{name: "none", conv: nil},
		{name: "pdf only", conv: &pageConverter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deck(context.Background(), baseOptions(t, folder, entries, tt.conv))
			assert.ErrorIs(t, err, ErrToolMissing)
		})
	}
}

func TestDeck_ConvertsLegacy(t *testing.T) {
	folder, entries := writeDecks(t, map[string]int{"one.pptx": 1, "old.ppt": 2})
	conv := &pageConverter{formats: []convert.Format{convert.FormatPDF, convert.FormatPPTX}}

	o := baseOptions(t, folder, entries, conv)
	res, err := Deck(context.Background(), o)
	require.NoError(t, err)

	assert.Equal(t, []string{"old.ppt"}, conv.calls)
	n, err := deck.SlideCount(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, listDir(t, o.ScratchDir))
}

func TestDeck_CorruptInputLeavesNoOutput(t *testing.T) {
	folder, entries := writeDecks(t, map[string]int{"one.pptx": 1})
	bad := filepath.Join(folder, "two.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	entries = append(entries, types.Entry{Name: "two.pptx", Path: bad})

	_, err := Deck(context.Background(), baseOptions(t, folder, entries, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssembly)
	assert.ElementsMatch(t, []string{"one.pptx", "two.pptx"}, listDir(t, folder))
}
