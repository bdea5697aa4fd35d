// Command templates inspects section template catalogs: it lints catalog
// files, prints synthesized rules and JSON Schemas, validates payloads and
// runs the rich text pipeline from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
