// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/bibtex"
	"github.com/pdiddy/citecheck/internal/cache"
	"github.com/pdiddy/citecheck/internal/fetch"
	"github.com/pdiddy/citecheck/internal/report"
	"github.com/pdiddy/citecheck/internal/verify"
	"github.com/pdiddy/citecheck/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Verify BibTeX entries against bibliographic data sources",
	Long: `Verify parses one or more .bib files and checks every entry against
academic data sources, following the configured workflow of identifier
lookups and title searches. Results go to stdout; --report additionally
writes a detailed Markdown report.

The exit status is 1 when any entry could not be verified, so the command
can gate continuous integration.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("report", "", "write a Markdown report to this path")
	verifyCmd.Flags().String("format", "table", "stdout format: table, json, or yaml")
	verifyCmd.Flags().Int("max-workers", 0, "concurrent verification workers (0 = config value)")
	verifyCmd.Flags().Bool("no-cache", false, "skip the fetch cache for this run")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if workers, _ := cmd.Flags().GetInt("max-workers"); workers > 0 {
		cfg.MaxWorkers = workers
	}

	var citations []types.Citation
	for _, path := range args {
		parsed, err := bibtex.ParseFile(path)
		if err != nil {
			return err
		}
		citations = append(citations, parsed...)
	}
	if len(citations) == 0 {
		return fmt.Errorf("no entries found in %s", strings.Join(args, ", "))
	}

	var store verify.Cache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); cfg.Cache.Enabled && !noCache {
		s, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("fetch cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer s.Close()
			store = s
		}
	}

	registry := fetch.NewRegistry(&cfg, logger)
	orch := verify.New(registry, cfg, store, logger)

	fmt.Fprintf(os.Stderr, "Verifying %d entries from %s\n", len(citations), strings.Join(args, ", "))
	result, err := orch.Verify(context.Background(), citations, cfg.Workflow)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		report.FormatTable(result, os.Stdout)
	case "json":
		data, err := report.JSON(result)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := report.YAML(result)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		md := report.Markdown(result, args, cfg.Report)
		if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", reportPath)
	}

	if result.Errors > 0 {
		return fmt.Errorf("%d of %d entries could not be verified", result.Errors, result.Total)
	}
	return nil
}
