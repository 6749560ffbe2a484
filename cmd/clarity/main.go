// main holds the entry logic for the clarity CLI.
package main

import (
	"github.com/claritylab/clarity/cmd"
	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/iostore"
)

// main is the entry point for the clarity pipeline.
func main() {
	err := cmd.Execute()
	iostore.CloseStores()
	if err != nil {
		contract.LogFatal("Cannot run clarity", err)
	}
}
