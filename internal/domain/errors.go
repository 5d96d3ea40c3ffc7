package domain

import "github.com/cockroachdb/errors"

// Domain errors represent the failure classes surfaced by the explorer.
// Errors built by the constructors below are marked with one of these
// sentinels: callers branch with errors.Is and print the message verbatim.
var (
	// ErrBadStorage means the root is not a usable Docker directory.
	ErrBadStorage = errors.New("bad docker storage")

	// ErrBadContainer means a container config or layer metadata file is
	// missing or corrupt.
	ErrBadContainer = errors.New("bad container")

	// ErrContainer means an abbreviated id is ambiguous or unknown.
	ErrContainer = errors.New("container lookup failed")

	// ErrDownloader means a registry interaction failed.
	ErrDownloader = errors.New("downloader failure")
)

// NewBadStorageError returns an error marked with ErrBadStorage.
func NewBadStorageError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrBadStorage)
}

// NewBadContainerError returns an error marked with ErrBadContainer.
func NewBadContainerError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrBadContainer)
}

// WrapBadContainerError wraps cause and marks it with ErrBadContainer.
func WrapBadContainerError(cause error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrBadContainer)
}

// NewContainerError returns an error marked with ErrContainer.
func NewContainerError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrContainer)
}

// WrapDownloaderError wraps cause and marks it with ErrDownloader.
func WrapDownloaderError(cause error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrDownloader)
}
