package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/depscope/internal/output"
)

var (
	listShow   string
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored facts",
	Long: `List dumps one fact family from the store. --show selects the
family, --format selects the encoding (couplings and churn support csv
for spreadsheet import).

Examples:
  depscope list
  depscope list --show couplings --format csv > couplings.csv
  depscope list --show churn --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listShow, "show", "modules", "fact family: modules, couplings, or churn")
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format: table, json, or csv")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := output.ParseFormat(listFormat)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch listShow {
	case "modules":
		modules, err := store.Modules(ctx)
		if err != nil {
			return err
		}
		if format == output.FormatJSON {
			return output.WriteJSON(os.Stdout, modules)
		}
		t := output.NewTable(os.Stdout, "PATH", "LANGUAGE", "LAST PARSED")
		for _, m := range modules {
			t.Row(m.Path, m.Language, m.LastParsed.Format("2006-01-02 15:04"))
		}
		return t.Flush()

	case "couplings":
		couplings, err := store.TemporalCouplings(ctx, cfg.Analysis.MinCoChanges, 0)
		if err != nil {
			return err
		}
		switch format {
		case output.FormatJSON:
			return output.WriteJSON(os.Stdout, couplings)
		case output.FormatCSV:
			return output.CouplingsCSV(os.Stdout, couplings)
		}
		t := output.NewTable(os.Stdout, "FILE A", "FILE B", "CO-CHANGES", "SIMILARITY")
		for _, c := range couplings {
			t.Row(c.FileA, c.FileB, c.CoChangeCount, c.JaccardSimilarity)
		}
		return t.Flush()

	case "churn":
		metrics, err := store.ChurnMetrics(ctx)
		if err != nil {
			return err
		}
		switch format {
		case output.FormatJSON:
			return output.WriteJSON(os.Stdout, metrics)
		case output.FormatCSV:
			return output.ChurnCSV(os.Stdout, metrics)
		}
		t := output.NewTable(os.Stdout, "FILE", "COMMITS", "AUTHORS", "ADDED", "DELETED", "CHURN")
		for _, m := range metrics {
			t.Row(m.FilePath, m.TotalCommits, m.AuthorCount, m.LinesAdded, m.LinesDeleted, m.TotalChurn)
		}
		return t.Flush()

	default:
		return fmt.Errorf("unknown fact family %q (expected modules, couplings, or churn)", listShow)
	}
}
