package domain

import "path/filepath"

// StorageDriverName identifies an on-disk layout convention.
type StorageDriverName string

const (
	StorageDriverAufs     StorageDriverName = "aufs"
	StorageDriverOverlay  StorageDriverName = "overlay"
	StorageDriverOverlay2 StorageDriverName = "overlay2"
	StorageDriverUnknown  StorageDriverName = "unknown"
)

// KnownStorageDrivers lists the drivers in detection priority order.
var KnownStorageDrivers = []StorageDriverName{
	StorageDriverAufs,
	StorageDriverOverlay2,
	StorageDriverOverlay,
}

// ParseStorageDriverName maps a config "Driver" value to a known name.
func ParseStorageDriverName(s string) StorageDriverName {
	switch StorageDriverName(s) {
	case StorageDriverAufs, StorageDriverOverlay, StorageDriverOverlay2:
		return StorageDriverName(s)
	default:
		return StorageDriverUnknown
	}
}

// MetadataVersion is the on-disk metadata layout generation.
type MetadataVersion int

const (
	MetadataV1 MetadataVersion = 1
	MetadataV2 MetadataVersion = 2
)

// ConfigFilename returns the per-container config file name.
func (v MetadataVersion) ConfigFilename() string {
	if v == MetadataV1 {
		return "config.json"
	}
	return "config.v2.json"
}

// Installation is a detected Docker root. It never changes after detection.
type Installation struct {
	Root    string
	Driver  StorageDriverName
	Version MetadataVersion
}

// ContainersDir returns the directory holding per-container state.
func (i Installation) ContainersDir() string {
	return filepath.Join(i.Root, "containers")
}

// DriverDir returns the storage driver's working area.
func (i Installation) DriverDir() string {
	return filepath.Join(i.Root, string(i.Driver))
}

// ImageDir returns the v2 image metadata store for the driver.
func (i Installation) ImageDir() string {
	return filepath.Join(i.Root, "image", string(i.Driver))
}
