// Package main provides the entry point for the duscan CLI tool.
//
// duscan walks a directory subtree in parallel, aggregates a
// configurable size metric up to every ancestor, and renders one of
// several tree/flat/tabular layouts. See cmd/duscan/cmd for the flag
// surface, or run: duscan --help
package main

import (
	"os"

	"github.com/rowantree/duscan/cmd/duscan/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
