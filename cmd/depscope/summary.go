package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/output"
	"github.com/rohankatakam/depscope/internal/storage"
)

var summaryJSON bool

type summaryReport struct {
	Structural *storage.StructuralCounts `json:"structural"`
	History    *storage.SummaryStats     `json:"history"`
	Unresolved []graph.UnresolvedEdge    `json:"unresolved_imports"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show counts for both fact families",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "emit machine-readable JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.StructuralCounts(ctx)
	if err != nil {
		return err
	}
	stats, err := store.SummaryStats(ctx)
	if err != nil {
		return err
	}

	g, err := graph.Load(ctx, store, logger)
	if err != nil {
		return err
	}
	unresolved := g.Unresolved()

	if summaryJSON {
		return output.WriteJSON(os.Stdout, &summaryReport{
			Structural: counts,
			History:    stats,
			Unresolved: unresolved,
		})
	}
	return output.RenderSummary(os.Stdout, counts, stats, len(unresolved))
}
