// Command ryan is the CLI front-end for the ryan configuration
// language: run a file or stdin, or evaluate a one-off expression, and
// print the result's JSON rendering. Grounded on
// holomush/cmd/holomush's root.go cobra-command-tree layout
// (NewXCmd() constructors wired together by a root command); exit
// codes distinguish failure classes per SPEC_FULL.md §6, an
// enrichment grounded in pulumi's CLI distinct-exit-code convention.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
