// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-merger/internal/contents"
	"github.com/pdiddy/deck-merger/internal/convert"
	"github.com/pdiddy/deck-merger/internal/history"
	"github.com/pdiddy/deck-merger/internal/merge"
	"github.com/pdiddy/deck-merger/internal/selection"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// addSelectionFlags registers the flags shared by pdf and deck.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "working folder (default: the last one used)")
	cmd.Flags().Bool("all", false, "select every presentation in the folder, in name order")
	cmd.Flags().IntSlice("remove", nil, "drop the items at these positions of the selection (1-based)")
	cmd.Flags().String("order", "", "rearrange the selection, e.g. 3,1,2 puts the third item first")
	cmd.Flags().StringArray("move", nil, "move the item at position FROM to position TO (from:to, 1-based, repeatable)")
	cmd.Flags().String("label", "", "label appended to the date in the output name")
	cmd.Flags().String("out-dir", "", "write the merged file here instead of the working folder")
}

// selectionArgs are the selection edits given on the command line. They
// apply in field order: refs and all build the selection, then remove,
// order and moves rearrange it.
type selectionArgs struct {
	refs   []string
	all    bool
	remove []int
	order  string
	moves  []string
}

// buildSelection resolves refs against candidates, skipping duplicates, and
// applies the edits in a.
func buildSelection(w io.Writer, candidates []types.Entry, a selectionArgs) (*selection.Selection, error) {
	sel := selection.New()
	if a.all {
		sel.AddAll(candidates)
	}

	picked, err := selection.Resolve(candidates, a.refs)
	if err != nil {
		return nil, err
	}
	for _, e := range picked {
		if !sel.Add(e) {
			fmt.Fprintf(w, "already selected: %s\n", e.Name)
		}
	}

	if len(a.remove) > 0 {
		idx := make([]int, len(a.remove))
		for i, p := range a.remove {
			idx[i] = p - 1
		}
		if err := sel.RemoveAll(idx); err != nil {
			return nil, err
		}
	}

	if a.order != "" {
		perm, err := selection.ParseOrder(a.order)
		if err != nil {
			return nil, err
		}
		if err := sel.Reorder(perm); err != nil {
			return nil, err
		}
	}

	for _, m := range a.moves {
		from, to, err := selection.ParseMove(m)
		if err != nil {
			return nil, err
		}
		if err := sel.Move(from, to); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// mergeInputs gathers the folder and ordered selection from the command line.
func mergeInputs(cmd *cobra.Command, args []string) (string, []types.Entry, error) {
	dir, _ := cmd.Flags().GetString("dir")
	a := selectionArgs{refs: args}
	a.all, _ = cmd.Flags().GetBool("all")
	a.remove, _ = cmd.Flags().GetIntSlice("remove")
	a.order, _ = cmd.Flags().GetString("order")
	a.moves, _ = cmd.Flags().GetStringArray("move")

	folder, err := workingFolder(dir)
	if err != nil {
		return "", nil, err
	}
	candidates, err := selection.Scan(folder)
	if err != nil {
		return "", nil, err
	}
	sel, err := buildSelection(os.Stderr, candidates, a)
	if err != nil {
		return "", nil, err
	}
	entries := sel.Entries()

	if len(entries) > 0 {
		fmt.Fprintln(os.Stderr, "Merge order:")
		for i, e := range entries {
			fmt.Fprintf(os.Stderr, "%3d  %s\n", i+1, e.Name)
		}
	}
	return folder, entries, nil
}

// baseOptions fills the parts of merge.Options common to both outputs.
func baseOptions(cmd *cobra.Command, folder string, entries []types.Entry, label string) merge.Options {
	outDir, _ := cmd.Flags().GetString("out-dir")
	return merge.Options{
		Folder:       folder,
		OutDir:       outDir,
		Entries:      entries,
		Label:        label,
		Wait:         convert.WaitOptionsFrom(cfg.Converter),
		PDFContents:  pdfContentsOptions(cfg.Contents),
		DeckContents: deckContentsOptions(cfg.Contents),
		Progress:     os.Stdout,
		Logger:       logger,
	}
}

// openHistory opens the history store. A store that cannot be opened only
// disables recording.
func openHistory() (*history.Store, merge.Recorder) {
	store, err := history.Open(cfg.StateDir)
	if err != nil {
		logger.Warn("merge history disabled", "err", err)
		return nil, nil
	}
	return store, store
}

func runMerge(ctx context.Context, opts merge.Options, run func(context.Context, merge.Options) (*merge.Result, error)) error {
	store, rec := openHistory()
	if store != nil {
		defer store.Close()
	}
	opts.History = rec

	res, err := run(ctx, opts)
	if err != nil {
		return err
	}
	printResult(os.Stdout, res, labelsFrom(cfg.Contents))
	return nil
}

func printResult(w io.Writer, res *merge.Result, labels contents.Labels) {
	fmt.Fprintf(w, "Wrote %s\n", res.Output)
	fmt.Fprintf(w, "Contents (%d %s):\n", res.SectionLength, unitName(res.Kind, res.SectionLength))
	for i, l := range res.Lines {
		fmt.Fprintf(w, "  %s\n", contents.FormatLine(i, l, labels))
	}
}

func unitName(kind types.OutputKind, n int) string {
	unit := "page"
	if kind == types.OutputDeck {
		unit = "slide"
	}
	if n != 1 {
		unit += "s"
	}
	return unit
}
