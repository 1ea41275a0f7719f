package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/analytics"
	"github.com/rohankatakam/depscope/internal/output"
)

var (
	productivityMinAuthors int
	productivityJSON       bool
)

var productivityCmd = &cobra.Command{
	Use:   "productivity",
	Short: "Report ownership, collaboration, and onboarding from history",
	Long: `Productivity answers process questions from the historical facts:
who owns each file, which files many people edit concurrently, and how
each developer's footprint has grown over time.

Examples:
  depscope productivity
  depscope productivity --min-authors 5 --json`,
	Args: cobra.NoArgs,
	RunE: runProductivity,
}

func init() {
	productivityCmd.Flags().IntVar(&productivityMinAuthors, "min-authors", 3, "author count that marks a file high-collaboration")
	productivityCmd.Flags().BoolVar(&productivityJSON, "json", false, "emit machine-readable JSON")
}

func runProductivity(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := loadGraph(ctx, store)
	if err != nil {
		return err
	}

	report, err := analytics.New(g, store, logger).Productivity(ctx, productivityMinAuthors)
	if err != nil {
		return err
	}

	if productivityJSON {
		return output.WriteJSON(os.Stdout, report)
	}
	return output.RenderProductivity(os.Stdout, report)
}
