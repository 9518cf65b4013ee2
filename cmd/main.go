package main

// Entry point; runs the cobra commands and exits 1 on error.

import (
	"fmt"
	"os"

	"fundrace/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
