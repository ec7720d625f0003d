package main

import (
	"os"

	"github.com/stwalsh4118/ll97/internal/cli"
)

func main() {
	// Cobra has already printed the error
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
