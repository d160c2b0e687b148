// Package main provides the entry point for the hivesearch CLI.
package main

import (
	"os"

	"github.com/beebytez/hivesearch/cmd/hivesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
