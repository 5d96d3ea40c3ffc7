// Package detect implements installation detection: it validates a Docker
// root and works out its storage driver and metadata version.
package detect

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

// Detector probes a candidate Docker root. It only reads from fs.
type Detector struct {
	fs  afero.Fs
	log zerolog.Logger
}

// NewDetector creates a detector.
func NewDetector(fs afero.Fs, log zerolog.Logger) *Detector {
	return &Detector{
		fs:  fs,
		log: logging.ForUseCase(log, "DetectInstallation"),
	}
}

// SetRoot validates path and returns the detected installation. The result
// is never modified afterwards.
func (d *Detector) SetRoot(ctx context.Context, path string) (domain.Installation, error) {
	root := filepath.Clean(path)
	log := d.log.With().Str(logging.FieldPath, root).Logger()

	if ok, _ := afero.DirExists(d.fs, root); !ok {
		return domain.Installation{}, notDockerDir(path)
	}

	markers := d.markers(root)
	if len(markers) == 0 {
		return domain.Installation{}, notDockerDir(path)
	}
	if err := ctx.Err(); err != nil {
		return domain.Installation{}, err
	}

	version, err := d.DetectVersion(root, markers)
	if err != nil {
		return domain.Installation{}, err
	}

	driver := d.selectDriver(root, version, markers)
	install := domain.Installation{Root: root, Driver: driver, Version: version}

	log.Debug().
		Str(logging.FieldDriver, string(driver)).
		Int("version", int(version)).
		Msg("docker installation detected")
	return install, nil
}

// DetectVersion tells v1 from v2 metadata. Per-container config file names
// win; the repositories index layout is the fallback for roots without
// containers.
func (d *Detector) DetectVersion(root string, drivers []domain.StorageDriverName) (domain.MetadataVersion, error) {
	v1, v2 := 0, 0
	for _, dir := range d.containerDirs(root) {
		if exists(d.fs, filepath.Join(dir, domain.MetadataV2.ConfigFilename())) {
			v2++
		} else if exists(d.fs, filepath.Join(dir, domain.MetadataV1.ConfigFilename())) {
			v1++
		}
	}
	switch {
	case v2 > 0:
		return domain.MetadataV2, nil
	case v1 > 0:
		return domain.MetadataV1, nil
	}

	for _, driver := range drivers {
		if exists(d.fs, filepath.Join(root, "image", string(driver), "repositories.json")) {
			return domain.MetadataV2, nil
		}
	}
	for _, driver := range drivers {
		if exists(d.fs, filepath.Join(root, "repositories-"+string(driver))) {
			return domain.MetadataV1, nil
		}
	}

	return 0, domain.NewBadStorageError("could not detect the metadata version of %s", root)
}

// markers returns the known driver directories present under root, in
// detection priority order.
func (d *Detector) markers(root string) []domain.StorageDriverName {
	var found []domain.StorageDriverName
	for _, driver := range domain.KnownStorageDrivers {
		if ok, _ := afero.DirExists(d.fs, filepath.Join(root, string(driver))); ok {
			found = append(found, driver)
		}
	}
	return found
}

// selectDriver prefers the driver recorded in container configs, then the
// first marker directory holding data. Empty residual directories only win
// when nothing else is available.
func (d *Detector) selectDriver(root string, version domain.MetadataVersion, markers []domain.StorageDriverName) domain.StorageDriverName {
	present := make(map[domain.StorageDriverName]bool, len(markers))
	for _, m := range markers {
		present[m] = true
	}

	configName := version.ConfigFilename()
	for _, dir := range d.containerDirs(root) {
		var cfg struct {
			Driver string `json:"Driver"`
		}
		path := filepath.Join(dir, configName)
		if err := filesystem.ReadJSON(d.fs, path, &cfg); err != nil {
			d.log.Debug().
				Err(err).
				Str(logging.FieldPath, path).
				Msg("skipping container config during driver selection")
			continue
		}
		if driver := domain.ParseStorageDriverName(cfg.Driver); present[driver] {
			return driver
		}
	}

	for _, driver := range markers {
		if d.hasContent(root, driver) {
			return driver
		}
	}

	d.log.Warn().
		Str(logging.FieldPath, root).
		Msg("no storage driver directory holds data, using the first one found")
	return markers[0]
}

func (d *Detector) hasContent(root string, driver domain.StorageDriverName) bool {
	if empty, err := afero.IsEmpty(d.fs, filepath.Join(root, string(driver))); err == nil && !empty {
		return true
	}
	layerdb := filepath.Join(root, "image", string(driver), "layerdb")
	if empty, err := afero.IsEmpty(d.fs, layerdb); err == nil && !empty {
		return true
	}
	return false
}

func (d *Detector) containerDirs(root string) []string {
	entries, err := afero.ReadDir(d.fs, filepath.Join(root, "containers"))
	if err != nil {
		return nil
	}
	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, "containers", entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}

func notDockerDir(path string) error {
	return domain.NewBadStorageError("%s is not a Docker directory", path)
}
