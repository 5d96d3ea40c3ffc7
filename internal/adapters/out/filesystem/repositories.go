package filesystem

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

type repositoriesFile struct {
	Repositories *domain.Repositories `json:"Repositories"`
}

// RepositoryStore reads the repositories index files of an installation.
type RepositoryStore struct {
	fs      afero.Fs
	install domain.Installation
	log     zerolog.Logger
}

// NewRepositoryStore creates a repositories index reader.
func NewRepositoryStore(fs afero.Fs, install domain.Installation, log zerolog.Logger) *RepositoryStore {
	return &RepositoryStore{
		fs:      fs,
		install: install,
		log:     logging.ForAdapter(log, "filesystem"),
	}
}

// ListIndexes returns one entry per index file found on disk. Drivers with
// an empty index are reported with an empty mapping.
func (s *RepositoryStore) ListIndexes() ([]domain.RepositoryIndex, error) {
	paths, err := s.indexPaths()
	if err != nil {
		return nil, err
	}

	indexes := make([]domain.RepositoryIndex, 0, len(paths))
	for _, path := range paths {
		index, err := s.readIndex(path)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, index)
	}

	s.log.Debug().Int(logging.FieldCount, len(indexes)).Msg("repositories indexes loaded")
	return indexes, nil
}

func (s *RepositoryStore) indexPaths() ([]string, error) {
	if s.install.Version == domain.MetadataV1 {
		paths, err := afero.Glob(s.fs, filepath.Join(s.install.Root, "repositories-*"))
		if err != nil {
			return nil, domain.NewBadStorageError("failed to list repositories files: %v", err)
		}
		sort.Strings(paths)
		return paths, nil
	}

	imageDir := filepath.Join(s.install.Root, "image")
	entries, err := afero.ReadDir(s.fs, imageDir)
	if err != nil {
		if IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.NewBadStorageError("failed to read %s: %v", imageDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(imageDir, entry.Name(), "repositories.json")
		if Exists(s.fs, path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *RepositoryStore) readIndex(path string) (domain.RepositoryIndex, error) {
	index := domain.RepositoryIndex{Path: path}

	raw, err := ReadTrimmed(s.fs, path)
	if err != nil {
		return index, domain.NewBadStorageError("failed to read repositories file %s: %v", path, err)
	}
	if raw == "" {
		index.Repositories = domain.NewRepositories()
		return index, nil
	}

	var file repositoriesFile
	if err := ReadJSON(s.fs, path, &file); err != nil {
		return index, domain.NewBadStorageError("invalid repositories file %s: %v", path, err)
	}
	if file.Repositories == nil {
		file.Repositories = domain.NewRepositories()
	}
	index.Repositories = file.Repositories
	return index, nil
}
