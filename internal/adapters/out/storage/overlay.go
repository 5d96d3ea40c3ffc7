package storage

import (
	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/domain"
)

// OverlayDriver handles <root>/overlay: the container directory holds an
// upper dir and a lower-id file naming the image layer whose root dir is
// the single lower directory.
type OverlayDriver struct {
	*base
}

// Name implements out.StorageDriver.
func (d *OverlayDriver) Name() domain.StorageDriverName {
	return domain.StorageDriverOverlay
}

// UpperDir implements out.StorageDriver.
func (d *OverlayDriver) UpperDir(c *domain.Container) string {
	if c.MountID == "" {
		return ""
	}
	return d.driverPath(c.MountID, "upper")
}

// MountCommands returns one overlay mount whose lowerdir stacks the
// container's upper dir over the image layer's root dir.
func (d *OverlayDriver) MountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	if err := d.requireMountID(c); err != nil {
		return nil, err
	}

	upper := d.UpperDir(c)
	if err := d.requireDir(c, upper, "overlay upper directory"); err != nil {
		return nil, err
	}

	lowerIDPath := d.driverPath(c.MountID, "lower-id")
	lowerID, err := filesystem.ReadTrimmed(d.fs, lowerIDPath)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, domain.NewBadContainerError("overlay lower-id file %s of container %s does not exist", lowerIDPath, c.ID)
		}
		return nil, domain.WrapBadContainerError(err, "could not read %s", lowerIDPath)
	}
	if lowerID == "" {
		return nil, domain.NewBadContainerError("overlay lower-id file %s is empty", lowerIDPath)
	}

	lowerRoot := d.driverPath(lowerID, "root")
	if err := d.requireDir(c, lowerRoot, "overlay lower directory"); err != nil {
		return nil, err
	}

	commands := []domain.MountCommand{
		d.mountCommand("-t", "overlay", "overlay", "-o", "ro,lowerdir="+upper+":"+lowerRoot, mountDir),
	}

	volumes, err := d.VolumeMountCommands(c, mountDir)
	if err != nil {
		return nil, err
	}
	return append(commands, volumes...), nil
}
