// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-merger/internal/merge"
	"github.com/pdiddy/deck-merger/internal/selection"
	"github.com/pdiddy/deck-merger/internal/settings"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var folderCmd = &cobra.Command{
	Use:   "folder [dir]",
	Short: "Show or change the working folder and list its presentations",
	Long: `Folder prints the working folder and the presentations it contains,
numbered from 1. Numbers and names are accepted by the pdf and deck commands.

With a directory argument the working folder changes and is remembered for
later runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFolder,
}

func init() {
	rootCmd.AddCommand(folderCmd)
}

func runFolder(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	folder, err := workingFolder(dir)
	if err != nil {
		return err
	}
	candidates, err := selection.Scan(folder)
	if err != nil {
		return err
	}
	printCandidates(os.Stdout, folder, candidates)
	return nil
}

// workingFolder returns dir when given, remembering it, or the stored folder.
func workingFolder(dir string) (string, error) {
	path := settings.Path(cfg.StateDir)
	if dir == "" {
		last := settings.Load(path).LastFolder
		if last == "" {
			return "", fmt.Errorf("%w: pass a folder with --dir or run 'deck-merger folder DIR'", merge.ErrNoFolder)
		}
		return last, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", merge.ErrNoFolder, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", merge.ErrNoFolder, dir)
	}
	if _, err := settings.RememberFolder(path, abs); err != nil {
		logger.Warn("could not remember folder", "folder", abs, "err", err)
	}
	return abs, nil
}

func printCandidates(w io.Writer, folder string, candidates []types.Entry) {
	fmt.Fprintf(w, "Folder: %s\n", folder)
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No presentations found.")
		return
	}
	for i, c := range candidates {
		fmt.Fprintf(w, "%3d  %s\n", i+1, c.Name)
	}
}
