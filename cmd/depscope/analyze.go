package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/extract"
	"github.com/rohankatakam/depscope/internal/history"
	"github.com/rohankatakam/depscope/internal/temporal"
)

var (
	analyzeMaxCommits     int
	analyzeSince          string
	analyzeRef            string
	analyzeSkipHistory    bool
	analyzeSkipStructural bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Extract structural and historical facts from a repository",
	Long: `Analyze walks the repository twice and fills the fact store.

The structural pass parses Python, JavaScript, and TypeScript sources
with Tree-sitter and records modules, classes, functions, and imports.
The historical pass walks 'git log' and records commits, authors, and
file changes, then recomputes temporal coupling, churn, and ownership.

Examples:
  depscope analyze
  depscope analyze ~/src/myrepo --max-commits 5000
  depscope analyze --since "6 months ago"
  depscope analyze --skip-history`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxCommits, "max-commits", 0, "limit the history walk (0 = unlimited)")
	analyzeCmd.Flags().StringVar(&analyzeSince, "since", "", `only mine commits after this date ("2024-01-01", "6 months ago")`)
	analyzeCmd.Flags().StringVar(&analyzeRef, "ref", "", "revision to walk history from (default HEAD)")
	analyzeCmd.Flags().BoolVar(&analyzeSkipHistory, "skip-history", false, "skip the git history pass")
	analyzeCmd.Flags().BoolVar(&analyzeSkipStructural, "skip-structural", false, "skip the source parsing pass")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	repoPath := "."
	if len(args) == 1 {
		repoPath = args[0]
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if !analyzeSkipStructural {
		extractor := extract.NewTreeSitterExtractor()
		defer extractor.Close()

		scanner := extract.NewScanner(extractor, store, logger)
		result, err := scanner.ScanDir(ctx, repoPath)
		if err != nil {
			return fmt.Errorf("structural scan: %w", err)
		}
		fmt.Printf("Structural: %d module(s) parsed, %d skipped, %d parse failure(s)\n",
			result.ModulesParsed, result.FilesSkipped, len(result.ParseFailures))
	}

	if !analyzeSkipHistory {
		miner := history.NewMiner(repoPath, logger)
		ref := analyzeRef
		if ref == "" {
			ref = cfg.History.Ref
		}
		since := analyzeSince
		if since == "" {
			since = cfg.History.Since
		}
		opts := history.Options{
			MaxCommits: maxCommitsSetting(),
			Since:      since,
			Ref:        ref,
		}
		records, err := miner.Log(ctx, opts)
		if err != nil {
			return fmt.Errorf("mine history: %w", err)
		}
		saved, err := history.Ingest(ctx, store, records, logger)
		if err != nil {
			return fmt.Errorf("ingest history: %w", err)
		}
		fmt.Printf("History: %d commit(s) mined, %d new\n", len(records), saved)

		engine := temporal.NewEngine(store, logger,
			temporal.WithWorkers(cfg.Analysis.Workers),
		)
		result, err := engine.Recompute(ctx)
		if err != nil {
			return fmt.Errorf("recompute temporal facts: %w", err)
		}
		fmt.Printf("Temporal: %d coupling pair(s), %d file(s) with churn, %d ownership row(s)\n",
			result.CouplingPairs, result.FilesWithChurn, result.OwnershipRows)
	}

	fmt.Printf("Done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func maxCommitsSetting() int {
	if analyzeMaxCommits > 0 {
		return analyzeMaxCommits
	}
	return cfg.History.MaxCommits
}
