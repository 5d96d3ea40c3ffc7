// Package storage implements the on-disk layout conventions of the Docker
// storage drivers: layer chain resolution, layer metadata lookup and the
// read-only mount commands that rebuild a container's root filesystem.
package storage

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

// DefaultMountBinary is the mount program written at the head of every
// generated command.
const DefaultMountBinary = "/bin/mount"

// Option configures a driver.
type Option func(*base) error

// WithMountBinary overrides the mount program. The value is split with
// shell quoting rules, so "sudo /bin/mount" yields two arguments.
func WithMountBinary(binary string) Option {
	return func(b *base) error {
		if strings.TrimSpace(binary) == "" {
			return nil
		}
		args, err := shellquote.Split(binary)
		if err != nil {
			return errors.Wrapf(err, "invalid mount binary %q", binary)
		}
		b.mountBinary = args
		return nil
	}
}

// New returns the driver implementation matching the installation.
func New(fs afero.Fs, install domain.Installation, log zerolog.Logger, opts ...Option) (out.StorageDriver, error) {
	b := &base{
		fs:          fs,
		install:     install,
		mountBinary: []string{DefaultMountBinary},
		log: logging.ForAdapter(log, "storage").With().
			Str(logging.FieldDriver, string(install.Driver)).
			Logger(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	switch install.Driver {
	case domain.StorageDriverAufs:
		return &AufsDriver{base: b}, nil
	case domain.StorageDriverOverlay:
		return &OverlayDriver{base: b}, nil
	case domain.StorageDriverOverlay2:
		return &Overlay2Driver{base: b}, nil
	default:
		return nil, domain.NewBadStorageError("unsupported storage driver %q", install.Driver)
	}
}
