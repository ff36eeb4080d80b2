package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uzazi-health/chwplan/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [files...]",
	Short: "Replay planning scenarios and check their expectations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, f := range args {
		sc, err := scenarios.Load(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
		rep, err := scenarios.Run(sc)
		if err != nil {
			return fmt.Errorf("run %s: %w", sc.Name, err)
		}
		if len(rep.Mismatches) == 0 {
			fmt.Printf("ok   %s\n", sc.Name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", sc.Name)
		for _, m := range rep.Mismatches {
			fmt.Printf("     %s\n", m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
	}
	return nil
}
