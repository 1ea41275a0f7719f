package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/output"
	"github.com/rohankatakam/depscope/internal/rules"
)

var (
	validateRuleFile      string
	validateFailOnWarning bool
	validateJSON          bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the codebase against architectural rules",
	Long: `Validate runs the rule file against the stored facts and exits with
a CI-friendly status code:

  0  all rules passed
  1  one or more error-severity violations
  2  warnings only, and --fail-on-warning was set

Rules that reference missing data (for example churn thresholds before
any history was ingested) are skipped, not failed.

Examples:
  depscope validate
  depscope validate --rules team-rules.yml --fail-on-warning`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRuleFile, "rules", "", "rule file (default: .depscope.yml)")
	validateCmd.Flags().BoolVar(&validateFailOnWarning, "fail-on-warning", false, "treat warnings as failures")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit machine-readable JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ruleFile := validateRuleFile
	if ruleFile == "" {
		ruleFile = cfg.Rules.File
	}
	ruleSet, err := rules.Load(ruleFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := loadGraph(ctx, store)
	if err != nil {
		return err
	}

	result, err := rules.NewValidator(store, g, logger).Validate(ctx, ruleSet)
	if err != nil {
		return err
	}

	if validateJSON {
		if err := output.WriteJSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		if err := output.RenderValidation(os.Stdout, result); err != nil {
			return err
		}
	}

	switch {
	case result.Errors > 0:
		os.Exit(1)
	case validateFailOnWarning && result.Warnings > 0:
		os.Exit(2)
	}
	return nil
}
