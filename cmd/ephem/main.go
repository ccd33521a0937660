// Command ephem calls the ephemeris engine from the command line, serves it
// over HTTP or explores it interactively.
package main

import (
	"fmt"
	"os"

	_ "github.com/wippyai/ephemeris-bridge/engine/native"
)

func main() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
