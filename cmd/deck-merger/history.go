// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-merger/internal/history"
	"github.com/pdiddy/deck-merger/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent merges",
	Long: `History lists the merges recorded in the state directory, newest first,
with their output file and item count. Use --json or --yaml to export the
records including every contents line.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Bool("json", false, "export records as JSON")
	historyCmd.Flags().Bool("yaml", false, "export records as YAML")
	historyCmd.Flags().Int("limit", history.DefaultLimit, "maximum records to show")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	limit, _ := cmd.Flags().GetInt("limit")
	if asJSON && asYAML {
		return fmt.Errorf("use either --json or --yaml, not both")
	}

	store, err := history.Open(cfg.StateDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	switch {
	case asJSON:
		return store.ExportJSON(ctx, os.Stdout, limit)
	case asYAML:
		return store.ExportYAML(ctx, os.Stdout, limit)
	}

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	printHistory(os.Stdout, records)
	return nil
}

// printHistory writes one row per merge. Units counts the merged pages or
// slides without the contents section.
func printHistory(w io.Writer, records []types.MergeRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No merges recorded.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-16s  %-4s  %-5s  %-5s  %s\n", "ID", "When", "Kind", "Items", "Units", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Fprintf(w, "%-4d  %-16s  %-4s  %-5d  %-5d  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Kind, len(r.Lines), r.TotalUnits(), r.Output)
	}
}
