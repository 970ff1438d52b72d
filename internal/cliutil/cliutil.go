// Package cliutil holds the small argument-parsing helpers shared by the
// indexer and searcher command-line drivers, in the hand-rolled style
// the original codebase uses instead of a flag-parsing library.
package cliutil

import (
	"fmt"
	"os"
	"strconv"
)

// GetStringArg returns args[1], exiting with a diagnostic if no value
// follows the flag named by name. It does not modify args; the caller
// advances past the value.
func GetStringArg(args []string, name string) string {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "\nERROR: %s is missing\n", name)
		os.Exit(1)
	}
	return args[1]
}

// GetNumericArg returns args[1] parsed as an int, exiting
// with a diagnostic if it is missing or not an integer.
func GetNumericArg(args []string, name string) int {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "\nERROR: %s is missing\n", name)
		os.Exit(1)
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %s (%s) is not an integer\n", name, args[1])
		os.Exit(1)
	}
	return value
}
