package storage

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/spf13/afero"

	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

// AufsDriver handles <root>/aufs: one diff directory per layer and a
// layers/<mount-id> file listing the branches below the container.
type AufsDriver struct {
	*base
}

// Name implements out.StorageDriver.
func (d *AufsDriver) Name() domain.StorageDriverName {
	return domain.StorageDriverAufs
}

// UpperDir implements out.StorageDriver. AuFS keeps no separate upper dir.
func (d *AufsDriver) UpperDir(*domain.Container) string {
	return ""
}

// MountCommands mounts the container's own diff branch, then appends each
// branch of aufs/layers/<mount-id> in file order: the -init layer first,
// then the image layers from the top down. Appended branches land below the
// existing ones, so the topmost layer keeps precedence.
func (d *AufsDriver) MountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	if err := d.requireMountID(c); err != nil {
		return nil, err
	}

	diff := d.driverPath("diff", c.MountID)
	if err := d.requireDir(c, diff, "aufs diff directory"); err != nil {
		return nil, err
	}

	commands := []domain.MountCommand{
		d.mountCommand("-t", "aufs", "-o", "ro,br="+diff+"=ro+wh", "none", mountDir),
	}

	branches, err := d.branches(c)
	if err != nil {
		return nil, err
	}
	for _, branch := range branches {
		branchDir := d.driverPath("diff", branch)
		if err := d.requireDir(c, branchDir, "aufs layer directory"); err != nil {
			return nil, err
		}
		commands = append(commands, d.mountCommand(
			"-t", "aufs", "-o", "ro,remount,append:"+branchDir+"=ro+wh", "none", mountDir,
		))
	}

	volumes, err := d.VolumeMountCommands(c, mountDir)
	if err != nil {
		return nil, err
	}
	return append(commands, volumes...), nil
}

// branches reads aufs/layers/<mount-id>, one layer id per line.
func (d *AufsDriver) branches(c *domain.Container) ([]string, error) {
	path := d.driverPath("layers", c.MountID)
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, domain.NewBadContainerError("aufs layers file %s of container %s does not exist", path, c.ID)
		}
		return nil, domain.WrapBadContainerError(err, "could not read aufs layers file %s", path)
	}

	var branches []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			branches = append(branches, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.WrapBadContainerError(err, "could not read aufs layers file %s", path)
	}

	d.log.Debug().
		Str(logging.FieldEntityID, c.ID).
		Int(logging.FieldCount, len(branches)).
		Msg("aufs branches loaded")
	return branches, nil
}
