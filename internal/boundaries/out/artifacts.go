package out

import "io"

// ArtifactWriter defines the contract for storing downloaded registry
// artifacts in an output directory.
type ArtifactWriter interface {
	// Dir returns the output directory.
	Dir() string

	// WriteFile stores a small in-memory artifact under name.
	WriteFile(name string, data []byte) error

	// PutBlob streams data to name, checking size when it is positive.
	PutBlob(name string, data io.Reader, size int64) error
}
