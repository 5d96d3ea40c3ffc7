package storage

import (
	"strings"

	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/domain"
)

// Overlay2Driver handles <root>/overlay2. Each layer directory has a diff
// dir and a lower file listing short links (l/<LINK>) to its ancestors.
type Overlay2Driver struct {
	*base
}

// Name implements out.StorageDriver.
func (d *Overlay2Driver) Name() domain.StorageDriverName {
	return domain.StorageDriverOverlay2
}

// UpperDir implements out.StorageDriver.
func (d *Overlay2Driver) UpperDir(c *domain.Container) string {
	if c.MountID == "" {
		return ""
	}
	return d.driverPath(c.MountID, "diff")
}

// MountCommands returns one overlay mount: the container's diff dir first,
// then every link entry of its lower file in order.
func (d *Overlay2Driver) MountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	if err := d.requireMountID(c); err != nil {
		return nil, err
	}

	diff := d.UpperDir(c)
	if err := d.requireDir(c, diff, "overlay2 diff directory"); err != nil {
		return nil, err
	}

	lowerPath := d.driverPath(c.MountID, "lower")
	lower, err := filesystem.ReadTrimmed(d.fs, lowerPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, domain.NewBadContainerError("overlay2 lower file %s of container %s does not exist", lowerPath, c.ID)
		}
		return nil, domain.WrapBadContainerError(err, "could not read %s", lowerPath)
	}

	lowerDirs := []string{diff}
	for _, link := range strings.Split(lower, ":") {
		if link == "" {
			continue
		}
		linkPath := d.driverPath(link)
		if !filesystem.Exists(d.fs, linkPath) {
			return nil, domain.NewBadContainerError("overlay2 link %s of container %s does not exist", linkPath, c.ID)
		}
		lowerDirs = append(lowerDirs, linkPath)
	}

	commands := []domain.MountCommand{
		d.mountCommand("-t", "overlay", "overlay", "-o", "ro,lowerdir="+strings.Join(lowerDirs, ":"), mountDir),
	}

	volumes, err := d.VolumeMountCommands(c, mountDir)
	if err != nil {
		return nil, err
	}
	return append(commands, volumes...), nil
}
