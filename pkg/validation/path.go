// Package validation provides path checks for files written by the
// downloader. Names come from registry responses and are not trusted.
package validation

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ValidatePath cleans a relative path component and rejects traversal and
// absolute paths.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if cleanPath == ".." || strings.HasPrefix(cleanPath, "../") || strings.Contains(cleanPath, "/../") {
		return "", errors.Newf("path traversal not allowed in %q", path)
	}

	if filepath.IsAbs(cleanPath) {
		return "", errors.Newf("absolute paths not allowed: %q", path)
	}

	return cleanPath, nil
}

// ValidatePathWithinRoot checks that fullPath stays within rootDir. Both
// are either absolute or relative to the same directory.
func ValidatePathWithinRoot(rootDir, fullPath string) error {
	rel, err := filepath.Rel(filepath.Clean(rootDir), filepath.Clean(fullPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return errors.Newf("path %s escapes root directory %s", fullPath, rootDir)
	}
	return nil
}
