// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-merger/internal/convert"
	"github.com/pdiddy/deck-merger/internal/deck"
	"github.com/pdiddy/deck-merger/internal/merge"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var deckCmd = &cobra.Command{
	Use:   "deck [presentations...]",
	Short: "Merge presentations into one deck with contents slides",
	Long: `Deck merges the selected presentations into <YYYYMMDD><label>.pptx in
the working folder. Slides keep their order; generated contents slides at the
front list every item with its slide count and first slide.

Legacy .ppt files are converted to .pptx first, which needs a converter that
can produce .pptx (soffice or container).`,
	RunE: runDeck,
}

func init() {
	addSelectionFlags(deckCmd)
	rootCmd.AddCommand(deckCmd)
}

func runDeck(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	if label == "" {
		label = cfg.Output.DeckLabel
	}
	folder, entries, err := mergeInputs(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conv, err := deckConverter(ctx, cfg.Converter, entries)
	if err != nil {
		return err
	}
	opts := baseOptions(cmd, folder, entries, label)
	opts.Converter = conv
	return runMerge(ctx, opts, merge.Deck)
}

// deckConverter builds the converter only when entries include legacy .ppt
// files. A converter that cannot be built is reported as missing.
func deckConverter(ctx context.Context, c types.ConverterConfig, entries []types.Entry) (convert.Converter, error) {
	if !merge.NeedsConverter(entries) {
		return nil, nil
	}
	conv, err := convert.New(ctx, c, loadedSecrets)
	if err != nil {
		if errors.Is(err, merge.ErrToolMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", merge.ErrToolMissing, err)
	}
	return conv, nil
}

func deckContentsOptions(c types.ContentsConfig) deck.ContentsOptions {
	o := deck.DefaultContentsOptions()
	if c.Title != "" {
		o.Title = c.Title
	}
	if c.ContinuedTitle != "" {
		o.ContinuedTitle = c.ContinuedTitle
	}
	o.Labels = labelsFrom(c)
	o.Font = c.SlideFont
	if c.LinesPerSlide > 0 {
		o.LinesPerSlide = c.LinesPerSlide
	}
	return o
}
