package filesystem

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/logging"
	"github.com/bnema/dexplore/pkg/validation"
)

// BlobWriter stores downloaded registry artifacts under one output
// directory. It is the only adapter that writes, and it never touches the
// inspected Docker root.
type BlobWriter struct {
	fs      afero.Fs
	rootDir string
	log     zerolog.Logger
}

// NewBlobWriter creates the output directory if needed.
func NewBlobWriter(fs afero.Fs, rootDir string, log zerolog.Logger) (*BlobWriter, error) {
	if err := fs.MkdirAll(rootDir, 0750); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", rootDir)
	}

	log = logging.ForAdapter(log, "filesystem")
	log.Debug().Str(logging.FieldPath, rootDir).Msg("blob writer initialized")

	return &BlobWriter{
		fs:      fs,
		rootDir: rootDir,
		log:     log,
	}, nil
}

// Dir returns the output directory.
func (w *BlobWriter) Dir() string {
	return w.rootDir
}

// PutBlob copies data to <root>/<name> through a temporary file. A size
// greater than zero is checked against the bytes written.
func (w *BlobWriter) PutBlob(name string, data io.Reader, size int64) error {
	cleanName, err := validation.ValidatePath(name)
	if err != nil {
		return errors.Wrap(err, "invalid blob name")
	}
	blobPath := filepath.Join(w.rootDir, cleanName)
	if err := validation.ValidatePathWithinRoot(w.rootDir, blobPath); err != nil {
		return err
	}

	if err := w.fs.MkdirAll(filepath.Dir(blobPath), 0750); err != nil {
		return errors.Wrap(err, "failed to create blob directory")
	}

	tmpPath := blobPath + ".tmp"
	file, err := w.fs.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return errors.Wrap(err, "failed to create temporary blob file")
	}

	written, err := io.Copy(file, data)
	closeErr := file.Close()
	if err != nil {
		_ = w.fs.Remove(tmpPath)
		return errors.Wrap(err, "failed to write blob data")
	}
	if closeErr != nil {
		_ = w.fs.Remove(tmpPath)
		return errors.Wrap(closeErr, "failed to close blob file")
	}

	if size > 0 && written != size {
		_ = w.fs.Remove(tmpPath)
		return errors.Newf("blob size mismatch: expected %d, got %d", size, written)
	}

	if err := w.fs.Rename(tmpPath, blobPath); err != nil {
		_ = w.fs.Remove(tmpPath)
		return errors.Wrap(err, "failed to move blob to final location")
	}

	w.log.Info().
		Str(logging.FieldPath, blobPath).
		Int64("size", written).
		Msg("blob stored")

	return nil
}

// WriteFile stores a small in-memory artifact such as a manifest.
func (w *BlobWriter) WriteFile(name string, data []byte) error {
	return w.PutBlob(name, bytes.NewReader(data), int64(len(data)))
}
