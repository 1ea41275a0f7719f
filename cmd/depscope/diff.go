package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/diffengine"
	"github.com/rohankatakam/depscope/internal/output"
)

var (
	diffRepoPath string
	diffJSON     bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <base> <head>",
	Short: "Compare the architecture of two revisions",
	Long: `Diff checks out both revisions into temporary worktrees, extracts
structural facts from each, and compares the metric vectors: counts,
complexity, circular dependencies, coupling, and hub modules. The
verdict says whether the change improved or degraded the architecture.

Examples:
  depscope diff main HEAD
  depscope diff v1.2.0 v1.3.0 --json
  depscope diff origin/main feature/split-core --repo ~/src/myrepo`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffRepoPath, "repo", ".", "repository to compare revisions in")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "emit machine-readable JSON")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine := diffengine.NewEngine(diffRepoPath, logger)
	report, err := engine.Compare(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if diffJSON {
		return output.WriteJSON(os.Stdout, report)
	}
	fmt.Print(report.Markdown())
	return nil
}
