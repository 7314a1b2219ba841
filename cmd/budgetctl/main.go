// Package main is the entry point for the budgetctl admin CLI.
package main

import (
	"os"

	"budgetbuddy/cmd/budgetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
