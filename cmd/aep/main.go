// Package main is the entry point for the aep CLI.
package main

import (
	"os"

	"github.com/energydata/aep/cmd/aep/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
