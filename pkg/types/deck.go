// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Entry is a candidate or selected presentation: a display name paired with
// its source file path. Within a selection, paths are unique.
type Entry struct {
	// Name is the display name, the file name within the working folder.
	Name string `json:"name" yaml:"name"`

	// Path is the absolute path of the source presentation.
	Path string `json:"path" yaml:"path"`
}

// ContentsItem is one input to the contents calculator: a label and the
// number of units (pages or slides) the item contributes.
type ContentsItem struct {
	Label string
	Count int
}

// ContentsLine is a derived, read-only row of the contents section.
type ContentsLine struct {
	// Label is the display name of the merged item.
	Label string `json:"label" yaml:"label"`

	// Count is the number of pages or slides the item contributes.
	Count int `json:"count" yaml:"count"`

	// Start is the 1-based position of the item's first unit in the merged output.
	Start int `json:"start" yaml:"start"`
}

// OutputKind distinguishes the two merge paths.
type OutputKind string

const (
	OutputPDF  OutputKind = "pdf"
	OutputDeck OutputKind = "pptx"
)

// MergeRecord describes a completed merge for the history store.
type MergeRecord struct {
	ID        int64          `json:"id" yaml:"id"`
	Kind      OutputKind     `json:"kind" yaml:"kind"`
	Label     string         `json:"label" yaml:"label"`
	Folder    string         `json:"folder" yaml:"folder"`
	Output    string         `json:"output" yaml:"output"`
	Converter string         `json:"converter,omitempty" yaml:"converter,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Lines     []ContentsLine `json:"lines" yaml:"lines"`
}

// TotalUnits returns the number of pages or slides contributed by the items,
// excluding the contents section.
func (r MergeRecord) TotalUnits() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Count
	}
	return n
}
