package main

import (
	"os"

	"github.com/uzazi-health/chwplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
