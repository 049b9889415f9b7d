package main

import (
	"fmt"
	"os"

	"github.com/provisr/provisr/internal/engine"
)

func main() {
	registry := engine.NewRegistry()
	if err := registerSteps(registry); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare step runners: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(registry).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
