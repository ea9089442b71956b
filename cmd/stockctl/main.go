// Package main is the entry point for the stockctl CLI.
// stockctl runs imports and stock fetches in-process, without a daemon.
package main

import (
	"os"

	"stockplane/cmd/stockctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
