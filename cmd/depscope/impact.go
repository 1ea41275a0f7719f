package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/analytics"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/output"
)

var (
	impactMaxDepth int
	impactJSON     bool
)

// impactReport is the combined JSON shape of one impact query.
type impactReport struct {
	Dependencies *graph.Closure         `json:"dependencies"`
	Dependents   *graph.Closure         `json:"dependents"`
	BlastRadius  *analytics.BlastRadius `json:"blast_radius"`
	TestImpact   *analytics.TestImpact  `json:"test_impact"`
}

var impactCmd = &cobra.Command{
	Use:   "impact <module>",
	Short: "Show what a change to one module can reach",
	Long: `Impact answers "what happens if I change this file": the transitive
dependency and dependent closures, the blast radius partitioned into
high-risk / structural-only / temporal-only, and the tests likely to
cover the module.

Examples:
  depscope impact core/database.py
  depscope impact core/database.py --max-depth 2
  depscope impact core/database.py --json`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

func init() {
	impactCmd.Flags().IntVar(&impactMaxDepth, "max-depth", -1, "bound the structural walk (-1 = unbounded)")
	impactCmd.Flags().BoolVar(&impactJSON, "json", false, "emit machine-readable JSON")
}

func runImpact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := loadGraph(ctx, store)
	if err != nil {
		return err
	}

	deps, err := g.TransitiveDependencies(ctx, target, impactMaxDepth)
	if err != nil {
		return fmt.Errorf("dependencies of %s: %w", target, err)
	}
	dependents, err := g.TransitiveDependents(ctx, target, impactMaxDepth)
	if err != nil {
		return fmt.Errorf("dependents of %s: %w", target, err)
	}

	analyzer := analytics.New(g, store, logger)
	blast, err := analyzer.BlastRadius(ctx, target, impactMaxDepth)
	if err != nil {
		return err
	}
	tests, err := analyzer.TestImpactFor(ctx, target)
	if err != nil {
		return err
	}

	if impactJSON {
		return output.WriteJSON(os.Stdout, &impactReport{
			Dependencies: deps,
			Dependents:   dependents,
			BlastRadius:  blast,
			TestImpact:   tests,
		})
	}

	if err := output.RenderClosure(os.Stdout, "Dependencies", deps); err != nil {
		return err
	}
	fmt.Println()
	if err := output.RenderClosure(os.Stdout, "Dependents", dependents); err != nil {
		return err
	}
	fmt.Println()
	if err := output.RenderBlastRadius(os.Stdout, blast); err != nil {
		return err
	}
	return output.RenderTestImpact(os.Stdout, tests)
}
