package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/uzazi-health/chwplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "chwplan",
	Short: "Postpartum visit planning service",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			logger.New("cmd").Debugf("no .env file found, using environment variables")
		}
	}
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
