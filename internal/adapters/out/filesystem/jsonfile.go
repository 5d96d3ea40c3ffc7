// Package filesystem implements the adapters that read Docker metadata from
// disk, and the one that writes downloaded blobs.
package filesystem

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// ReadJSON decodes the JSON file at path into v. The file handle is
// released on every path, including decode failures.
func ReadJSON(fs afero.Fs, path string, v any) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

// ReadTrimmed returns the content of a small text file without surrounding
// whitespace.
func ReadTrimmed(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Exists reports whether path exists. Symlinks are not followed when the
// filesystem supports it, so a dangling link still counts.
func Exists(fs afero.Fs, path string) bool {
	if lst, ok := fs.(afero.Lstater); ok {
		_, _, err := lst.LstatIfPossible(path)
		return err == nil
	}
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

// IsNotExist reports whether err means a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
