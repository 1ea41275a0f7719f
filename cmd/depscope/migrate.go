package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/migration"
	"github.com/rohankatakam/depscope/internal/output"
)

var (
	migrateConfigFile string
	migrateRepoPath   string
	migrateJSON       bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Track large-scale code migrations",
	Long: `Migrate tracks the progress of codebase-wide changes (framework
upgrades, API deprecations) by scanning for configured legacy patterns
and recording each occurrence in the fact store.`,
}

var migrateScanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the tree for legacy patterns and record occurrences",
	Long: `Scan loads the migration config, walks the repository for pattern
occurrences, and persists them stamped with the current commit hash.

Examples:
  depscope migrate scan --migration-config migrations/drop-flask.yml
  depscope migrate scan ~/src/myrepo --migration-config upgrade.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrateScan,
}

var migrateProgressCmd = &cobra.Command{
	Use:   "progress <migration-id>",
	Short: "Summarize remaining occurrences for one migration",
	Args:  cobra.ExactArgs(1),
	RunE:  runMigrateProgress,
}

func init() {
	migrateScanCmd.Flags().StringVar(&migrateConfigFile, "migration-config", "", "migration definition file (required)")
	migrateScanCmd.MarkFlagRequired("migration-config")
	migrateProgressCmd.Flags().BoolVar(&migrateJSON, "json", false, "emit machine-readable JSON")

	migrateCmd.AddCommand(migrateScanCmd)
	migrateCmd.AddCommand(migrateProgressCmd)
}

func runMigrateScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repoPath := "."
	if len(args) == 1 {
		repoPath = args[0]
	}

	migCfg, err := migration.LoadConfig(migrateConfigFile)
	if err != nil {
		return fmt.Errorf("load migration config: %w", err)
	}

	occurrences, err := migration.NewScanner(repoPath, logger).Scan(ctx, migCfg)
	if err != nil {
		return fmt.Errorf("scan for patterns: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	commitHash := headCommit(ctx, repoPath)
	tracker := migration.NewTracker(store, logger)
	if err := tracker.Record(ctx, migCfg, occurrences, commitHash); err != nil {
		return fmt.Errorf("record occurrences: %w", err)
	}

	fmt.Printf("Recorded %d occurrence(s) for migration %s\n", len(occurrences), migCfg.MigrationID)

	progress, err := tracker.Progress(ctx, migCfg.MigrationID)
	if err != nil {
		return err
	}
	return output.RenderMigrationProgress(os.Stdout, progress)
}

func runMigrateProgress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	progress, err := migration.NewTracker(store, logger).Progress(ctx, args[0])
	if err != nil {
		return err
	}

	if migrateJSON {
		return output.WriteJSON(os.Stdout, progress)
	}
	return output.RenderMigrationProgress(os.Stdout, progress)
}

// headCommit returns the current commit hash, or empty outside a repo.
func headCommit(ctx context.Context, repoPath string) string {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		logger.WithError(err).Debug("Could not resolve HEAD, occurrences recorded without commit hash")
		return ""
	}
	return strings.TrimSpace(string(out))
}
