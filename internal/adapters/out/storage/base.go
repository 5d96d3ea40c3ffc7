package storage

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

// layerConfig is the subset of a layer metadata file we read. v1 graph
// entries carry id and parent; v2 image configs carry neither.
type layerConfig struct {
	ID              string `json:"id"`
	Parent          string `json:"parent"`
	Created         string `json:"created"`
	ContainerConfig struct {
		Cmd []string `json:"Cmd"`
	} `json:"container_config"`
}

// base holds what every driver shares. It is never mutated after New.
type base struct {
	fs          afero.Fs
	install     domain.Installation
	mountBinary []string
	log         zerolog.Logger
}

// OrderedLayers returns the container's layer ids, topmost first.
func (b *base) OrderedLayers(c *domain.Container) ([]string, error) {
	if c.ImageID == "" {
		return nil, domain.NewBadContainerError("container %s has no image id", c.ID)
	}

	next := b.parentOfV2
	if b.install.Version == domain.MetadataV1 {
		next = b.parentOfV1
	}

	var layers []string
	seen := make(map[string]struct{})
	for current := c.ImageID; current != ""; {
		if _, ok := seen[current]; ok {
			return nil, domain.NewBadContainerError("layer chain of container %s loops at %s", c.ID, current)
		}
		seen[current] = struct{}{}
		layers = append(layers, current)

		parent, err := next(current)
		if err != nil {
			return nil, err
		}
		current = parent
	}

	b.log.Debug().
		Str(logging.FieldEntityID, c.ID).
		Int(logging.FieldCount, len(layers)).
		Msg("resolved layer chain")
	return layers, nil
}

// parentOfV2 reads imagedb/metadata/<alg>/<hex>/parent. A missing file ends
// the chain.
func (b *base) parentOfV2(layerID string) (string, error) {
	d, err := parseLayerDigest(layerID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(b.install.ImageDir(), "imagedb", "metadata", d.Algorithm().String(), d.Encoded(), "parent")
	parent, err := filesystem.ReadTrimmed(b.fs, path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return "", nil
		}
		return "", domain.WrapBadContainerError(err, "could not read parent of layer %s", layerID)
	}
	return parent, nil
}

func (b *base) parentOfV1(layerID string) (string, error) {
	cfg, err := b.readV1Layer(layerID)
	if err != nil {
		return "", err
	}
	return cfg.Parent, nil
}

// LayerInfo loads a layer's build metadata.
func (b *base) LayerInfo(layerID string) (*domain.LayerInfo, error) {
	var (
		cfg *layerConfig
		err error
	)
	if b.install.Version == domain.MetadataV1 {
		cfg, err = b.readV1Layer(layerID)
	} else {
		cfg, err = b.readV2Layer(layerID)
	}
	if err != nil {
		return nil, err
	}

	size, err := b.LayerSize(layerID)
	if err != nil {
		return nil, err
	}

	return &domain.LayerInfo{
		ID:      layerID,
		Parent:  cfg.Parent,
		Created: cfg.Created,
		ContainerConfig: domain.LayerContainerConfig{
			Cmd: cfg.ContainerConfig.Cmd,
		},
		Size: size,
	}, nil
}

// LayerSize returns graph/<id>/layersize on v1 installations. Content
// addressed stores do not record it.
func (b *base) LayerSize(layerID string) (int64, error) {
	if b.install.Version != domain.MetadataV1 {
		return 0, nil
	}

	path := filepath.Join(b.install.Root, "graph", layerID, "layersize")
	raw, err := filesystem.ReadTrimmed(b.fs, path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return 0, nil
		}
		return 0, domain.WrapBadContainerError(err, "could not read size of layer %s", layerID)
	}

	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.WrapBadContainerError(err, "invalid size for layer %s", layerID)
	}
	return size, nil
}

func (b *base) readV1Layer(layerID string) (*layerConfig, error) {
	return b.readLayerConfig(layerID, filepath.Join(b.install.Root, "graph", layerID, "json"))
}

func (b *base) readV2Layer(layerID string) (*layerConfig, error) {
	d, err := parseLayerDigest(layerID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(b.install.ImageDir(), "imagedb", "content", d.Algorithm().String(), d.Encoded())
	return b.readLayerConfig(layerID, path)
}

func (b *base) readLayerConfig(layerID, path string) (*layerConfig, error) {
	var cfg layerConfig
	if err := filesystem.ReadJSON(b.fs, path, &cfg); err != nil {
		if filesystem.IsNotExist(err) {
			return nil, domain.NewBadContainerError("could not find layer metadata file %s for layer %s", path, layerID)
		}
		return nil, domain.WrapBadContainerError(err, "could not load layer %s", layerID)
	}
	return &cfg, nil
}

// VolumeMountCommands binds every recorded volume and bind mount read-only
// beneath mountDir.
func (b *base) VolumeMountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	commands := make([]domain.MountCommand, 0, len(c.MountPoints))
	for _, mp := range c.MountPoints {
		if mp.Source == "" || mp.Destination == "" {
			return nil, domain.NewBadContainerError("container %s has an incomplete mount point", c.ID)
		}
		commands = append(commands, b.mountCommand(
			"--bind", "-o", "ro", mp.Source, filepath.Join(mountDir, mp.Destination),
		))
	}
	return commands, nil
}

func (b *base) mountCommand(args ...string) domain.MountCommand {
	cmd := make(domain.MountCommand, 0, len(b.mountBinary)+len(args))
	cmd = append(cmd, b.mountBinary...)
	return append(cmd, args...)
}

// driverPath joins elem beneath the driver's working area.
func (b *base) driverPath(elem ...string) string {
	return filepath.Join(append([]string{b.install.DriverDir()}, elem...)...)
}

// requireDir fails with a BadContainer error when path is not a directory.
func (b *base) requireDir(c *domain.Container, path, what string) error {
	if !filesystem.IsDir(b.fs, path) {
		return domain.NewBadContainerError("%s %s of container %s does not exist", what, path, c.ID)
	}
	return nil
}

func (b *base) requireMountID(c *domain.Container) error {
	if c.MountID == "" {
		return domain.NewBadContainerError("container %s has no mount id", c.ID)
	}
	return nil
}

// parseLayerDigest accepts algorithm-prefixed and bare sha256 ids.
func parseLayerDigest(layerID string) (digest.Digest, error) {
	if !strings.Contains(layerID, ":") {
		layerID = digest.SHA256.String() + ":" + layerID
	}
	d, err := digest.Parse(layerID)
	if err != nil {
		return "", domain.WrapBadContainerError(err, "invalid layer id %s", layerID)
	}
	return d, nil
}
