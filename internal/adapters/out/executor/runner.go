// Package executor runs synthesized mount commands as subprocesses.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/logging"
)

// ErrNotRoot is returned when a command is run without root privileges.
var ErrNotRoot = errors.New("mounting requires root privileges")

// Runner implements out.CommandRunner with os/exec.
type Runner struct {
	euid func() int
	log  zerolog.Logger
}

var _ out.CommandRunner = (*Runner)(nil)

// Option configures a Runner.
type Option func(*Runner)

// WithEUID overrides the effective user id lookup.
func WithEUID(euid func() int) Option {
	return func(r *Runner) {
		r.euid = euid
	}
}

// NewRunner creates a subprocess runner.
func NewRunner(log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		euid: os.Geteuid,
		log:  logging.ForAdapter(log, "executor"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes args[0] with the remaining arguments and waits for it.
// The combined output is attached to the returned error.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("empty command")
	}
	if r.euid() != 0 {
		return ErrNotRoot
	}

	line := strings.Join(args, " ")
	r.log.Debug().Str("command", line).Msg("running command")

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg == "" {
			return errors.Wrapf(err, "%s", line)
		}
		return errors.Wrapf(err, "%s: %s", line, msg)
	}
	return nil
}
