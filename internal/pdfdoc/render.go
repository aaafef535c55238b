// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/deck-merger/internal/contents"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// Layout places the contents section on a page. Distances are in points,
// measured from the top-left corner; y values are text baselines.
type Layout struct {
	PageSize           string
	PageHeight         float64
	Margin             float64
	TitleSize          float64
	ContinuedTitleSize float64
	LineSize           float64
	Leading            float64
	FirstLineY         float64
}

// A4 is the default contents layout.
func A4() Layout {
	return Layout{
		PageSize:           "A4",
		PageHeight:         841.89,
		Margin:             72,
		TitleSize:          36,
		ContinuedTitleSize: 28,
		LineSize:           20,
		Leading:            20,
		FirstLineY:         120,
	}
}

// LinesPerPage is how many contents lines fit between FirstLineY and the
// bottom margin.
func (l Layout) LinesPerPage() int {
	usable := l.PageHeight - l.Margin - l.FirstLineY
	return max(1, int(usable/l.Leading)+1)
}

// ContentsOptions controls the text of the rendered contents section.
type ContentsOptions struct {
	Layout         Layout
	Title          string
	ContinuedTitle string
	Labels         contents.Labels

	// FontPath is an optional UTF-8 TrueType font. Without it a CJK font
	// from FontDirs is used when the text needs one, and otherwise the core
	// Helvetica font with text translated to cp1252.
	FontPath string
	FontDirs []string
}

// DefaultContentsOptions returns A4 layout with English captions.
func DefaultContentsOptions() ContentsOptions {
	return ContentsOptions{
		Layout:         A4(),
		Title:          "Contents",
		ContinuedTitle: "Contents (continued)",
		Labels:         contents.DefaultLabels(),
		FontDirs:       SystemFontDirs(),
	}
}

const utf8Family = "contents"

// RenderContents writes the contents section for lines to path. The page
// count equals contents.SectionLength(len(lines), opts.Layout.LinesPerPage()).
func RenderContents(lines []types.ContentsLine, opts ContentsOptions, path string) error {
	l := opts.Layout
	font := fontFor(lines, opts)
	fontDir := ""
	if font != "" {
		fontDir = filepath.Dir(font)
	}

	pdf := gofpdf.New("P", "pt", l.PageSize, fontDir)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(l.Margin, l.Margin, l.Margin)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if font != "" {
		pdf.AddUTF8Font(utf8Family, "", filepath.Base(font))
		family = utf8Family
		tr = func(s string) string { return s }
	}

	for page, chunk := range contents.Chunk(lines, l.LinesPerPage()) {
		pdf.AddPage()

		title, size := opts.Title, l.TitleSize
		if page > 0 {
			title, size = opts.ContinuedTitle, l.ContinuedTitleSize
		}
		pdf.SetFont(family, "", size)
		pdf.Text(l.Margin, l.Margin, tr(title))

		pdf.SetFont(family, "", l.LineSize)
		y := l.FirstLineY
		for i, line := range chunk {
			index := page*l.LinesPerPage() + i
			pdf.Text(l.Margin, y, tr(contents.FormatLine(index, line, opts.Labels)))
			y += l.Leading
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("rendering contents: %w", err)
	}
	return nil
}

// fontFor returns the TrueType font to embed: the configured one, or a
// discovered CJK font when some text is outside Latin-1. It returns "" for
// the core font.
func fontFor(lines []types.ContentsLine, opts ContentsOptions) string {
	if opts.FontPath != "" {
		return opts.FontPath
	}
	texts := []string{opts.Title, opts.ContinuedTitle, opts.Labels.Pages, opts.Labels.Start}
	for _, l := range lines {
		texts = append(texts, l.Label)
	}
	for _, t := range texts {
		if !latin1(t) {
			font := FindCJKFont(opts.FontDirs)
			if font == "" {
				slog.Warn("no CJK font found, non-Latin text will not render", "dirs", opts.FontDirs)
			}
			return font
		}
	}
	return ""
}

func latin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}
