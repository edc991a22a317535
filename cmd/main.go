package main

// Main entry point of the application
// Executes the Cobra root command and maps errors to exit code 1

import (
	"fmt"
	"os"

	"goalie-chart/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
