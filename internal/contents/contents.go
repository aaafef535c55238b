// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contents computes the generated contents section of a merged
// output: how many pages or slides the section itself occupies and the
// 1-based starting offset of every merged item.
package contents

import (
	"fmt"

	"github.com/pdiddy/deck-merger/pkg/types"
)

// Labels are the captions written on each contents line.
type Labels struct {
	Pages string
	Start string
}

// DefaultLabels returns the English captions.
func DefaultLabels() Labels {
	return Labels{Pages: "pages", Start: "start"}
}

// SectionLength returns the number of pages or slides the contents section
// needs for the given number of entries. The section always has at least one
// page since it carries the title even when it lists nothing.
func SectionLength(entries, linesPerPage int) int {
	if linesPerPage < 1 {
		linesPerPage = 1
	}
	n := (entries + linesPerPage - 1) / linesPerPage
	if n < 1 {
		n = 1
	}
	return n
}

// Paginate assigns each item its starting offset in the merged output, given
// the length of the contents section that precedes the first item. Items
// with a zero count are listed but do not advance the offset.
func Paginate(items []types.ContentsItem, sectionLength int) []types.ContentsLine {
	lines := make([]types.ContentsLine, 0, len(items))
	next := sectionLength + 1
	for _, it := range items {
		count := it.Count
		if count < 0 {
			count = 0
		}
		lines = append(lines, types.ContentsLine{
			Label: it.Label,
			Count: count,
			Start: next,
		})
		next += count
	}
	return lines
}

// Build computes the section length once from the number of items and
// returns it together with the paginated lines.
func Build(items []types.ContentsItem, linesPerPage int) (sectionLength int, lines []types.ContentsLine) {
	sectionLength = SectionLength(len(items), linesPerPage)
	return sectionLength, Paginate(items, sectionLength)
}

// Chunk splits lines into the pages of the contents section. The number of
// chunks always equals SectionLength(len(lines), linesPerPage).
func Chunk(lines []types.ContentsLine, linesPerPage int) [][]types.ContentsLine {
	if linesPerPage < 1 {
		linesPerPage = 1
	}
	pages := make([][]types.ContentsLine, 0, SectionLength(len(lines), linesPerPage))
	for start := 0; start < len(lines); start += linesPerPage {
		end := min(start+linesPerPage, len(lines))
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = append(pages, nil)
	}
	return pages
}

// FormatLine renders one contents line; index is 0-based and printed 1-based.
func FormatLine(index int, l types.ContentsLine, labels Labels) string {
	return fmt.Sprintf("%d. %s  %s: %d  %s: %d", index+1, l.Label, labels.Pages, l.Count, labels.Start, l.Start)
}

// Items pairs labels with counts, in order.
func Items(labels []string, counts []int) ([]types.ContentsItem, error) {
	if len(labels) != len(counts) {
		return nil, fmt.Errorf("contents: %d labels but %d counts", len(labels), len(counts))
	}
	items := make([]types.ContentsItem, len(labels))
	for i := range labels {
		items[i] = types.ContentsItem{Label: labels[i], Count: counts[i]}
	}
	return items, nil
}
