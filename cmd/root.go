// Package cmd is the process entry point of the dexplore binary.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/dexplore/internal/adapters/in/cli"
)

// Execute runs the CLI on args and returns the exit status. An interrupt
// cancels the running command.
func Execute(version, commit, date string, args []string, stdout, stderr io.Writer) int {
	cli.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, args, stdout, stderr)
}
