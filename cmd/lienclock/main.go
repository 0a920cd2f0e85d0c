// Command lienclock is the admin CLI for the deadline engine.
package main

import (
	"os"

	"github.com/noticeworks/lienclock/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error; the exit code is all that is left to do.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
