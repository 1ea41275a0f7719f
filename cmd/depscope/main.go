package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/config"
	"github.com/rohankatakam/depscope/internal/graph"
	"github.com/rohankatakam/depscope/internal/storage"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "depscope",
	Short: "Dependency and coupling analytics for source repositories",
	Long: `depscope extracts structural facts (imports, classes, functions) and
historical facts (commits, co-changes, ownership) from a repository, then
answers questions the import graph alone cannot: what a change will break,
which modules are hotspots, and where hidden couplings live.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .depscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`depscope {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(productivityCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
}

// openStore connects to the configured fact store backend.
func openStore() (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Storage.Type {
	case "postgres":
		return storage.NewPostgresStore(cfg.Storage.PostgresDSN, logger)
	default:
		return storage.NewSQLiteStore(cfg.Storage.LocalPath, logger)
	}
}

// loadGraph builds the resolved dependency graph from stored facts.
func loadGraph(ctx context.Context, store storage.Store) (*graph.DependencyGraph, error) {
	g, err := graph.Load(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("load dependency graph: %w", err)
	}
	if g.Size() == 0 {
		return nil, fmt.Errorf("no structural facts in store; run 'depscope analyze' first")
	}
	return g, nil
}
