// Package main provides the entry point for the notelog CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/notelog/cmd/notelog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
