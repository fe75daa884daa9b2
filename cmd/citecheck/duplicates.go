// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citecheck/internal/bibtex"
	"github.com/pdiddy/citecheck/internal/duplicates"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [file]",
	Short: "Find duplicate entries in a BibTeX bibliography",
	Long: `Duplicates scans a .bib file for entries that appear to cite the same
work under different keys, without touching the network. With --prune it
writes a copy of the file keeping only the first entry of each group.`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicates,
}

func init() {
	duplicatesCmd.Flags().String("prune", "", "write a pruned copy of the bibliography to this path")

	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bib file: %w", err)
	}
	citations, err := bibtex.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	groups := duplicates.Find(citations)
	if len(groups) == 0 {
		fmt.Printf("No duplicates among %d entries.\n", len(citations))
		return nil
	}

	for i, g := range groups {
		fmt.Printf("Group %d (%.0f%% similar): %s\n", i+1, g.Score*100, g.Reason)
		for _, e := range g.Entries {
			if e.Year != "" {
				fmt.Printf("  %-24s  %s (%s)\n", e.Key, e.Title, e.Year)
			} else {
				fmt.Printf("  %-24s  %s\n", e.Key, e.Title)
			}
		}
	}
	fmt.Printf("\n%d duplicate group(s) among %d entries\n", len(groups), len(citations))

	prunePath, _ := cmd.Flags().GetString("prune")
	if prunePath == "" {
		return nil
	}

	keep := make(map[string]bool, len(citations))
	for _, c := range citations {
		keep[c.Key] = true
	}
	removed := 0
	for _, g := range groups {
		for _, e := range g.Entries[1:] {
			if keep[e.Key] {
				keep[e.Key] = false
				removed++
			}
		}
	}

	pruned := bibtex.Filter(string(content), keep)
	if err := os.WriteFile(prunePath, []byte(pruned), 0o644); err != nil {
		return fmt.Errorf("writing pruned bibliography: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s with %d duplicate(s) removed\n", prunePath, removed)
	return nil
}
