// Package domain contains pure business types shared by every layer.
// Types here carry no behaviour that touches the filesystem.
package domain

import (
	"strings"

	"github.com/docker/go-connections/nat"
)

// Container is the normalized view of one container config file, whatever
// metadata version produced it.
type Container struct {
	ID                string
	Name              string
	CreationTimestamp string
	StartTimestamp    string
	ConfigImageName   string
	ImageID           string
	Running           bool
	ExposedPorts      nat.PortSet
	MountPoints       []MountPoint
	LogPath           string

	// MountID names the container's directory under the driver's working
	// area. Equal to ID for v1 installations.
	MountID        string
	StorageName    StorageDriverName
	Version        MetadataVersion
	ConfigFilename string
}

// MountPoint is a bind mount or named volume attached to a container.
// Source is the host path resolved beneath the Docker root, Destination the
// path inside the container.
type MountPoint struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MatchesRepository reports whether the container's configured image name
// starts with repository.
func (c *Container) MatchesRepository(repository string) bool {
	if repository == "" {
		return false
	}
	return strings.HasPrefix(c.ConfigImageName, repository)
}

// ShortImageID returns the image id without its algorithm prefix.
func (c *Container) ShortImageID() string {
	if idx := strings.Index(c.ImageID, ":"); idx != -1 {
		return c.ImageID[idx+1:]
	}
	return c.ImageID
}

// ContainerSummary is the JSON summary row for one container. Field order
// is the rendering order.
type ContainerSummary struct {
	ImageName   string       `json:"image_name"`
	ContainerID string       `json:"container_id"`
	ImageID     string       `json:"image_id"`
	StartDate   string       `json:"start_date"`
	MountID     string       `json:"mount_id,omitempty"`
	UpperDir    string       `json:"upper_dir,omitempty"`
	MountPoints []MountPoint `json:"mount_points,omitempty"`
	LogPath     string       `json:"log_path"`
}
