// Package in defines input ports (interfaces) for use cases.
// These interfaces define the contract between driving adapters (CLI)
// and the business logic (use cases).
package in

import (
	"context"

	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
)

// Container is one loaded container bound to its installation's storage
// driver.
type Container interface {
	// Info returns the loaded container record.
	Info() *domain.Container

	// Storage returns the installation's shared storage driver.
	Storage() out.StorageDriver

	// OrderedLayers returns the layer ids, topmost first.
	OrderedLayers() ([]string, error)

	// LayerInfo loads one layer of the container, by full or abbreviated id.
	LayerInfo(idOrPrefix string) (*domain.LayerInfo, error)

	// History merges the metadata of every layer.
	History(opts domain.HistoryOptions) (*domain.History, error)

	// MountCommands returns the read-only mount commands for mountDir.
	MountCommands(mountDir string) ([]domain.MountCommand, error)

	// VolumeMountCommands returns only the volume and bind mount commands.
	VolumeMountCommands(mountDir string) ([]domain.MountCommand, error)

	// Summary returns the JSON summary row.
	Summary() (domain.ContainerSummary, error)
}

// ExplorerService defines the queries run against one installation.
type ExplorerService interface {
	// Installation returns the detected installation.
	Installation() domain.Installation

	// GetAllContainers loads every readable container.
	GetAllContainers(ctx context.Context) ([]Container, error)

	// GetContainer loads one container by full or abbreviated id.
	GetContainer(ctx context.Context, idOrPrefix string) (Container, error)

	// GetContainersList returns the containers passing filter.
	GetContainersList(ctx context.Context, filter domain.ContainerFilter) ([]Container, error)

	// GetContainersJSON returns the summaries of the containers passing filter.
	GetContainersJSON(ctx context.Context, filter domain.ContainerFilter) ([]domain.ContainerSummary, error)

	// MountContainer computes the mount commands of a container and, unless
	// dryRun is set, runs them in order, stopping at the first failure.
	MountContainer(ctx context.Context, idOrPrefix, mountDir string, dryRun bool) ([]domain.MountCommand, error)

	// GetRepositories returns every repositories index.
	GetRepositories(ctx context.Context) ([]domain.RepositoryIndex, error)

	// GetRepositoriesString renders the repositories indexes as JSON.
	GetRepositoriesString(ctx context.Context) (string, error)
}
