// Package out defines output ports (interfaces) for infrastructure.
// These interfaces define the contract between use cases and driven adapters
// (filesystem, registry, subprocesses).
package out

import "context"

// CommandRunner executes one argument list as a subprocess.
type CommandRunner interface {
	Run(ctx context.Context, args []string) error
}
