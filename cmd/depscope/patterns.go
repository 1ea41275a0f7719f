package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/analytics"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/output"
	"github.com/rohankatakam/depscope/internal/storage"
)

var (
	patternsTop  int
	patternsJSON bool
)

// patternsReport is the combined JSON shape of one patterns run.
type patternsReport struct {
	Centrality     []graph.NodeCentrality       `json:"centrality"`
	Cycles         []graph.Cycle                `json:"cycles"`
	Layers         *graph.LayerReport           `json:"layers"`
	Hotspots       []analytics.Hotspot          `json:"hotspots"`
	HiddenDeps     []analytics.HiddenDependency `json:"hidden_dependencies"`
	GodClasses     []storage.GodClass           `json:"god_classes"`
	ShotgunCommits []storage.ShotgunCommit      `json:"shotgun_commits"`
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Report structural and historical design patterns",
	Long: `Patterns surfaces the recurring problems in a codebase: coupling
hubs and cycles, directory layering, hotspots (complex + churning +
coupled), hidden dependencies (co-change without imports), god classes,
and shotgun surgery commits.

Examples:
  depscope patterns
  depscope patterns --top 10
  depscope patterns --json`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().IntVar(&patternsTop, "top", 20, "entries per ranked section")
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "emit machine-readable JSON")
}

func runPatterns(cmd *cobra.Command, args []string) error {
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
	analyzer := analytics.New(g, store, logger)

	report := &patternsReport{
		Centrality: g.Centrality(),
		Cycles:     g.Cycles(),
		Layers:     g.Layers(),
	}
	if report.Hotspots, err = analyzer.Hotspots(ctx, patternsTop); err != nil {
		return err
	}
	if report.HiddenDeps, err = analyzer.HiddenDependencies(ctx, cfg.Analysis.TemporalThreshold); err != nil {
		return err
	}
	if report.GodClasses, err = analyzer.GodClasses(ctx, cfg.Analysis.GodClassComplexity, cfg.Analysis.GodClassMethods); err != nil {
		return err
	}
	if report.ShotgunCommits, err = analyzer.ShotgunSurgery(ctx, cfg.Analysis.ShotgunMinFiles, patternsTop); err != nil {
		return err
	}

	if patternsJSON {
		return output.WriteJSON(os.Stdout, report)
	}

	fmt.Println("## Coupling")
	if err := output.RenderCentrality(os.Stdout, report.Centrality, patternsTop); err != nil {
		return err
	}

	fmt.Println("\n## Circular dependencies")
	if err := output.RenderCycles(os.Stdout, report.Cycles); err != nil {
		return err
	}

	fmt.Println("\n## Layers")
	if err := output.RenderLayers(os.Stdout, report.Layers); err != nil {
		return err
	}

	fmt.Println("\n## Hotspots")
	if err := output.RenderHotspots(os.Stdout, report.Hotspots); err != nil {
		return err
	}

	fmt.Println("\n## Hidden dependencies")
	if err := output.RenderHiddenDependencies(os.Stdout, report.HiddenDeps); err != nil {
		return err
	}

	fmt.Println("\n## God classes")
	if err := output.RenderGodClasses(os.Stdout, report.GodClasses); err != nil {
		return err
	}

	fmt.Println("\n## Shotgun surgery")
	return output.RenderShotgunCommits(os.Stdout, report.ShotgunCommits)
}
