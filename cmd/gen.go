package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/uzazi-health/chwplan/pkg/export"
	"github.com/uzazi-health/chwplan/registry/synthetic"
)

var genFlags struct {
	dir     string
	seed    int64
	mothers int
	chws    int
	lat     float64
	lng     float64
	radius  float64
	danger  float64
	visits  int
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic demo cohort as CSV fixtures",
	RunE:  runGen,
}

func init() {
	genCmd.Flags().StringVar(&genFlags.dir, "dir", ".", "output directory")
	genCmd.Flags().Int64Var(&genFlags.seed, "seed", 1, "random seed")
	genCmd.Flags().IntVar(&genFlags.mothers, "mothers", 12, "number of mothers")
	genCmd.Flags().IntVar(&genFlags.chws, "chws", 3, "number of workers")
	genCmd.Flags().Float64Var(&genFlags.lat, "lat", -1.9536, "site center latitude")
	genCmd.Flags().Float64Var(&genFlags.lng, "lng", 30.0606, "site center longitude")
	genCmd.Flags().Float64Var(&genFlags.radius, "radius", 5, "scatter radius in km")
	genCmd.Flags().Float64Var(&genFlags.danger, "danger", 0.25, "share of mothers with a danger sign")
	genCmd.Flags().IntVar(&genFlags.visits, "visits", 6, "daily visit capacity per worker")
	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	src := synthetic.New(synthetic.Config{
		Seed:         genFlags.seed,
		Mothers:      genFlags.mothers,
		CHWs:         genFlags.chws,
		CenterLat:    genFlags.lat,
		CenterLng:    genFlags.lng,
		RadiusKm:     genFlags.radius,
		DangerPct:    genFlags.danger,
		VisitsPerCHW: genFlags.visits,
	})
	ctx := cmd.Context()

	mothers, err := src.Mothers(ctx)
	if err != nil {
		return err
	}
	chws, err := src.CHWs(ctx)
	if err != nil {
		return err
	}

	mPath := filepath.Join(genFlags.dir, "mothers.csv")
	cPath := filepath.Join(genFlags.dir, "chws.csv")
	if err := writeCSV(mPath, func(f *os.File) error { return export.WriteMothersCSV(f, mothers) }); err != nil {
		return err
	}
	if err := writeCSV(cPath, func(f *os.File) error { return export.WriteCHWsCSV(f, chws) }); err != nil {
		return err
	}
	fmt.Printf("wrote %d mothers to %s and %d workers to %s\n", len(mothers), mPath, len(chws), cPath)
	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
