package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uzazi-health/chwplan/core/triage"
	"github.com/uzazi-health/chwplan/pkg/export"
	"github.com/uzazi-health/chwplan/registry/csvsource"
)

var triageFlags struct {
	mothers string
	format  string
	out     string
}

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Assess a cohort without scheduling",
	RunE:  runTriage,
}

func init() {
	triageCmd.Flags().StringVar(&triageFlags.mothers, "mothers", "mothers.csv", "mother registry CSV")
	triageCmd.Flags().StringVar(&triageFlags.format, "format", "json", "output format: json or csv")
	triageCmd.Flags().StringVar(&triageFlags.out, "out", "", "write to file instead of stdout")
	rootCmd.AddCommand(triageCmd)
}

func runTriage(cmd *cobra.Command, args []string) error {
	mothers, err := csvsource.ReadMothers(triageFlags.mothers)
	if err != nil {
		return err
	}
	assessed := triage.Apply(mothers)

	w, closeOut, err := openOut(triageFlags.out)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	switch triageFlags.format {
	case "json":
		return export.WriteJSON(w, assessed)
	case "csv":
		return export.WriteTriageCSV(w, assessed)
	default:
		return fmt.Errorf("unknown format %q", triageFlags.format)
	}
}
