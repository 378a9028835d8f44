// Package main provides the ReSonata command-line tool.
//
// Usage:
//
//	resonata compose --composer chopin --mood melancholic --innovation 0.2 -o piece.mid
//	resonata profiles
//
// Guidance runs on local rules unless --remote is given and a provider key
// is configured in the environment.
package main

import (
	"fmt"
	"os"

	"github.com/resonata/resonata-api/cmd/resonata/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
