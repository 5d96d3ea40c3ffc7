package out

import (
	"github.com/bnema/dexplore/internal/domain"
)

// StorageDriver defines the contract for one on-disk layout convention
// (AuFS, Overlay, Overlay2). A single instance is shared read-only by every
// container of an installation; implementations never mutate state after
// construction.
type StorageDriver interface {
	// Name returns the driver this implementation handles.
	Name() domain.StorageDriverName

	// OrderedLayers returns the container's layer ids, topmost first.
	OrderedLayers(c *domain.Container) ([]string, error)

	// LayerInfo loads the build metadata of one layer.
	LayerInfo(layerID string) (*domain.LayerInfo, error)

	// LayerSize returns the bytes added by a layer, 0 when not tracked.
	LayerSize(layerID string) (int64, error)

	// MountCommands returns the ordered commands reproducing the
	// container's root filesystem read-only under mountDir, including
	// volume and bind mounts.
	MountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error)

	// VolumeMountCommands returns only the bind/volume mount commands.
	VolumeMountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error)

	// UpperDir returns the container's writable layer directory, or ""
	// when the driver has no such notion.
	UpperDir(c *domain.Container) string
}

// ContainerStore defines the contract for reading per-container state.
type ContainerStore interface {
	// ListIDs returns the ids of every container directory, sorted.
	ListIDs() ([]string, error)

	// Load parses one container's config file.
	Load(containerID string) (*domain.Container, error)
}

// RepositoryStore defines the contract for reading repositories indexes.
type RepositoryStore interface {
	// ListIndexes returns every repositories index file found on disk.
	ListIndexes() ([]domain.RepositoryIndex, error)
}
