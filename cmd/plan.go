package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/uzazi-health/chwplan/core/planner"
	"github.com/uzazi-health/chwplan/pkg/export"
	"github.com/uzazi-health/chwplan/registry"
	"github.com/uzazi-health/chwplan/registry/csvsource"
)

var planFlags struct {
	mothers  string
	chws     string
	blocked  string
	capacity int
	format   string
	out      string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a one-shot visit plan from CSV files",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFlags.mothers, "mothers", "mothers.csv", "mother registry CSV")
	planCmd.Flags().StringVar(&planFlags.chws, "chws", "chws.csv", "worker roster CSV")
	planCmd.Flags().StringVar(&planFlags.blocked, "blocked", "", "blocked segments CSV")
	planCmd.Flags().IntVar(&planFlags.capacity, "capacity", -1, "override every worker's daily visit capacity")
	planCmd.Flags().StringVar(&planFlags.format, "format", "json", "output format: json or csv")
	planCmd.Flags().StringVar(&planFlags.out, "out", "", "write to file instead of stdout")
	rootCmd.AddCommand(planCmd)
}

// loadRequest pulls one snapshot out of a source.
func loadRequest(ctx context.Context, src registry.Source) (planner.PlanRequest, error) {
	var req planner.PlanRequest
	var err error
	if req.Mothers, err = src.Mothers(ctx); err != nil {
		return req, fmt.Errorf("load mothers: %w", err)
	}
	if req.CHWs, err = src.CHWs(ctx); err != nil {
		return req, fmt.Errorf("load chws: %w", err)
	}
	if req.Blocked, err = src.BlockedEdges(ctx); err != nil {
		return req, fmt.Errorf("load blocked edges: %w", err)
	}
	return req, nil
}

// openOut returns the output writer and a close function.
func openOut(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := csvsource.New(csvsource.Config{
		MothersPath: planFlags.mothers,
		CHWsPath:    planFlags.chws,
		BlockedPath: planFlags.blocked,
	})
	if err != nil {
		return err
	}
	req, err := loadRequest(ctx, src)
	if err != nil {
		return err
	}
	if planFlags.capacity >= 0 {
		c := planFlags.capacity
		req.Options.CapacityOverride = &c
	}

	mgr := planner.NewPlanManager(nil, 0, nil, nil, nil)
	defer func() { _ = mgr.Close() }()
	res, err := mgr.Plan(ctx, req)
	if err != nil {
		return err
	}

	w, closeOut, err := openOut(planFlags.out)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	switch planFlags.format {
	case "json":
		return export.WriteJSON(w, res)
	case "csv":
		return export.WritePlanCSV(w, res.Plan)
	default:
		return fmt.Errorf("unknown format %q", planFlags.format)
	}
}
