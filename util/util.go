package util

import (
	"fmt"
	"os"
)

// Harness exit codes. ExitSkip follows the automake convention: a
// required external collaborator is unavailable, so the suite was
// skipped rather than failed.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitSkip    = 77
)

func Bail(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "blurbench:", err)
		os.Exit(ExitFailure)
	}
}

func Skip(msg string) {
	fmt.Fprintln(os.Stderr, "SKIP:", msg)
	os.Exit(ExitSkip)
}
