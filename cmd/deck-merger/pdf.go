// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-merger/internal/contents"
	"github.com/pdiddy/deck-merger/internal/convert"
	"github.com/pdiddy/deck-merger/internal/merge"
	"github.com/pdiddy/deck-merger/internal/pdfdoc"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf [presentations...]",
	Short: "Convert presentations to PDF and merge them behind a contents section",
	Long: `Pdf converts each selected presentation to PDF with the configured
converter, then writes <YYYYMMDD><label>.pdf into the working folder: a
contents section listing every item with its page count and start page,
followed by the converted documents in selection order.

Presentations are given by name or by the number shown by 'deck-merger
folder'. If any conversion fails the merge is abandoned and no output is
written.`,
	RunE: runPDF,
}

func init() {
	addSelectionFlags(pdfCmd)
	pdfCmd.Flags().Int("preset", 0, "use the Nth label from output.label_presets (1-based)")

	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	label, err := pdfLabel(cmd, cfg.Output.LabelPresets)
	if err != nil {
		return err
	}
	folder, entries, err := mergeInputs(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conv, err := convert.New(ctx, cfg.Converter, loadedSecrets)
	if err != nil {
		return err
	}

	opts := baseOptions(cmd, folder, entries, label)
	opts.Converter = conv
	return runMerge(ctx, opts, merge.PDF)
}

// pdfLabel picks the label from --label or --preset; they are exclusive.
func pdfLabel(cmd *cobra.Command, presets []string) (string, error) {
	label, _ := cmd.Flags().GetString("label")
	preset, _ := cmd.Flags().GetInt("preset")
	if preset == 0 {
		return label, nil
	}
	if label != "" {
		return "", fmt.Errorf("use either --label or --preset, not both")
	}
	if preset < 1 || preset > len(presets) {
		return "", fmt.Errorf("preset %d out of range (%d configured)", preset, len(presets))
	}
	return presets[preset-1], nil
}

func labelsFrom(c types.ContentsConfig) contents.Labels {
	l := contents.DefaultLabels()
	if c.PagesLabel != "" {
		l.Pages = c.PagesLabel
	}
	if c.StartLabel != "" {
		l.Start = c.StartLabel
	}
	return l
}

func pdfContentsOptions(c types.ContentsConfig) pdfdoc.ContentsOptions {
	o := pdfdoc.DefaultContentsOptions()
	if c.Title != "" {
		o.Title = c.Title
	}
	if c.ContinuedTitle != "" {
		o.ContinuedTitle = c.ContinuedTitle
	}
	o.Labels = labelsFrom(c)
	o.FontPath = c.FontPath
	o.FontDirs = append(append([]string(nil), c.FontDirs...), o.FontDirs...)
	return o
}
