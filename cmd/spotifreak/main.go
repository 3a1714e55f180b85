// Package main is the spotifreak command-line entrypoint, wiring
// internal/clicmd's command tree the way the teacher's own examples/cli
// wires a cli.CLI in main().
package main

import (
	"fmt"
	"os"

	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/internal/clicmd"
)

func main() {
	app := clicmd.New()
	err := app.Execute()
	if err == nil {
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "spotifreak: %v\n", err)
	if e, ok := errs.As(err); ok && e.Kind == errs.RemoteRateLimited {
		os.Exit(2)
	}
	os.Exit(1)
}
