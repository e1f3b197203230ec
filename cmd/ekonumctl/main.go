// Command ekonumctl computes projections and budget-vs-actual reports from the
// terminal and manages the record store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
