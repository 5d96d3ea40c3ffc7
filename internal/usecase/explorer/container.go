package explorer

import (
	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/usecase/identity"
	"github.com/bnema/dexplore/pkg/timestamp"
)

// Container binds a loaded container record to the installation's storage
// driver. The driver is shared by every container and never owned.
type Container struct {
	*domain.Container
	storage out.StorageDriver
}

var _ in.Container = (*Container)(nil)

// NewContainer binds c to storage.
func NewContainer(c *domain.Container, storage out.StorageDriver) *Container {
	return &Container{Container: c, storage: storage}
}

// Info implements in.Container.
func (c *Container) Info() *domain.Container {
	return c.Container
}

// Storage implements in.Container.
func (c *Container) Storage() out.StorageDriver {
	return c.storage
}

// OrderedLayers implements in.Container.
func (c *Container) OrderedLayers() ([]string, error) {
	return c.storage.OrderedLayers(c.Container)
}

// LayerInfo resolves idOrPrefix against the container's layer chain, then
// loads that layer's metadata.
func (c *Container) LayerInfo(idOrPrefix string) (*domain.LayerInfo, error) {
	layers, err := c.OrderedLayers()
	if err != nil {
		return nil, err
	}

	res := identity.Resolve(identity.NounLayer, idOrPrefix, layers)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return c.storage.LayerInfo(res.ID)
}

// MountCommands implements in.Container.
func (c *Container) MountCommands(mountDir string) ([]domain.MountCommand, error) {
	return c.storage.MountCommands(c.Container, mountDir)
}

// VolumeMountCommands implements in.Container.
func (c *Container) VolumeMountCommands(mountDir string) ([]domain.MountCommand, error) {
	return c.storage.VolumeMountCommands(c.Container, mountDir)
}

// Summary implements in.Container. mount_id is only reported on v2
// installations, upper_dir only by drivers that keep one.
func (c *Container) Summary() (domain.ContainerSummary, error) {
	summary := domain.ContainerSummary{
		ImageName:   c.ConfigImageName,
		ContainerID: c.ID,
		ImageID:     c.ShortImageID(),
		UpperDir:    c.storage.UpperDir(c.Container),
		MountPoints: c.MountPoints,
		LogPath:     c.LogPath,
	}

	if c.StartTimestamp != "" {
		start, err := timestamp.Format(c.StartTimestamp)
		if err != nil {
			return summary, domain.WrapBadContainerError(err, "container %s has an invalid start date", c.ID)
		}
		summary.StartDate = start
	}

	if c.Version == domain.MetadataV2 {
		summary.MountID = c.MountID
	}
	return summary, nil
}
