// Package main provides the entry point for the finewiki-mcp CLI.
package main

import (
	"os"

	"github.com/finewiki/finewiki-mcp/cmd/finewiki-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
