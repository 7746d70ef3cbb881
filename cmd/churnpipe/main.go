// churnpipe prepares the churn dataset and executes the analysis notebooks.
//
// Usage:
//
//	churnpipe run [--root <dir>] [--config <file>] [--graph <file.dot>]
//	churnpipe prepare [--root <dir>] [--config <file>]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
