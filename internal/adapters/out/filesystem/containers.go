package filesystem

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
)

// containerConfigFile covers both config.json (v1) and config.v2.json (v2).
type containerConfigFile struct {
	ID      string `json:"ID"`
	Name    string `json:"Name"`
	Created string `json:"Created"`
	Image   string `json:"Image"`
	Driver  string `json:"Driver"`
	LogPath string `json:"LogPath"`

	// Some v1 releases recorded the running flag at the top level.
	Running *bool           `json:"Running"`
	State   *containerState `json:"State"`
	Config  *imageConfig    `json:"Config"`

	// v1: container path -> host path, in file order.
	Volumes *orderedmap.OrderedMap[string, string] `json:"Volumes"`
	// v2: keyed by container path, in file order.
	MountPoints *orderedmap.OrderedMap[string, mountPointConfig] `json:"MountPoints"`
}

type containerState struct {
	Running   bool   `json:"Running"`
	StartedAt string `json:"StartedAt"`
}

type imageConfig struct {
	Image        string            `json:"Image"`
	Cmd          strslice.StrSlice `json:"Cmd"`
	ExposedPorts json.RawMessage   `json:"ExposedPorts"`
}

type mountPointConfig struct {
	Source      string     `json:"Source"`
	Destination string     `json:"Destination"`
	Name        string     `json:"Name"`
	Driver      string     `json:"Driver"`
	Type        mount.Type `json:"Type"`
}

// ContainerStore reads per-container state from <root>/containers.
type ContainerStore struct {
	fs      afero.Fs
	install domain.Installation
	log     zerolog.Logger
}

// NewContainerStore creates a container store for a detected installation.
func NewContainerStore(fs afero.Fs, install domain.Installation, log zerolog.Logger) *ContainerStore {
	return &ContainerStore{
		fs:      fs,
		install: install,
		log:     logging.ForAdapter(log, "filesystem"),
	}
}

// ListIDs returns the ids of every non-hidden container directory, sorted.
func (s *ContainerStore) ListIDs() ([]string, error) {
	dir := s.install.ContainersDir()
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if IsNotExist(err) {
			return nil, domain.NewBadStorageError("containers directory %s does not exist", dir)
		}
		return nil, domain.NewBadStorageError("failed to read containers directory %s: %v", dir, err)
	}

	// Directories without a config file stay listed so Load can report them.
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ids = append(ids, entry.Name())
	}

	sort.Strings(ids)
	return ids, nil
}

// Load parses one container's config file into a domain.Container.
func (s *ContainerStore) Load(containerID string) (*domain.Container, error) {
	configName := s.install.Version.ConfigFilename()
	configPath := filepath.Join(s.install.ContainersDir(), containerID, configName)

	var cfg containerConfigFile
	if err := ReadJSON(s.fs, configPath, &cfg); err != nil {
		if IsNotExist(err) {
			return nil, domain.NewBadContainerError("container config file %s not found", configPath)
		}
		return nil, domain.WrapBadContainerError(err, "could not load container %s", containerID)
	}

	c := &domain.Container{
		ID:                containerID,
		Name:              cfg.Name,
		CreationTimestamp: cfg.Created,
		ImageID:           cfg.Image,
		LogPath:           cfg.LogPath,
		Version:           s.install.Version,
		ConfigFilename:    configName,
		StorageName:       s.install.Driver,
		ExposedPorts:      nat.PortSet{},
	}

	if cfg.ID != "" && cfg.ID != containerID {
		s.log.Warn().
			Str(logging.FieldEntityID, containerID).
			Str("config_id", cfg.ID).
			Msg("container id in config does not match its directory")
	}

	if driver := domain.ParseStorageDriverName(cfg.Driver); driver != domain.StorageDriverUnknown {
		c.StorageName = driver
	}

	if cfg.State != nil {
		c.Running = cfg.State.Running
		c.StartTimestamp = cfg.State.StartedAt
	} else if cfg.Running != nil {
		c.Running = *cfg.Running
	}

	if cfg.Config != nil {
		c.ConfigImageName = cfg.Config.Image
		ports, err := parseExposedPorts(cfg.Config.ExposedPorts)
		if err != nil {
			return nil, domain.WrapBadContainerError(err, "invalid exposed ports in %s", configPath)
		}
		c.ExposedPorts = ports
	}

	switch s.install.Version {
	case domain.MetadataV1:
		c.MountID = containerID
		c.MountPoints = s.volumesToMountPoints(cfg.Volumes)
	default:
		mountID, err := s.readMountID(c)
		if err != nil {
			return nil, err
		}
		c.MountID = mountID
		c.MountPoints = s.mountPointsFromConfig(containerID, cfg.MountPoints)
	}

	return c, nil
}

// readMountID reads image/<driver>/layerdb/mounts/<id>/mount-id. A missing
// file leaves the mount id empty; mount synthesis reports it later.
func (s *ContainerStore) readMountID(c *domain.Container) (string, error) {
	path := filepath.Join(s.install.Root, "image", string(c.StorageName), "layerdb", "mounts", c.ID, "mount-id")
	mountID, err := ReadTrimmed(s.fs, path)
	if err != nil {
		if IsNotExist(err) {
			s.log.Debug().
				Str(logging.FieldEntityID, c.ID).
				Str(logging.FieldPath, path).
				Msg("container has no mount-id file")
			return "", nil
		}
		return "", domain.WrapBadContainerError(err, "could not read mount id of container %s", c.ID)
	}
	return mountID, nil
}

func (s *ContainerStore) volumesToMountPoints(volumes *orderedmap.OrderedMap[string, string]) []domain.MountPoint {
	if volumes == nil || volumes.Len() == 0 {
		return nil
	}

	points := make([]domain.MountPoint, 0, volumes.Len())
	for pair := volumes.Oldest(); pair != nil; pair = pair.Next() {
		points = append(points, domain.MountPoint{
			Source:      s.underRoot(pair.Value),
			Destination: pair.Key,
		})
	}
	return points
}

func (s *ContainerStore) mountPointsFromConfig(containerID string, mounts *orderedmap.OrderedMap[string, mountPointConfig]) []domain.MountPoint {
	if mounts == nil || mounts.Len() == 0 {
		return nil
	}

	var points []domain.MountPoint
	for pair := mounts.Oldest(); pair != nil; pair = pair.Next() {
		dst, mp := pair.Key, pair.Value
		log := s.log.With().
			Str(logging.FieldEntityID, containerID).
			Str("destination", dst).
			Logger()

		mountType := mp.Type
		if mountType == "" {
			// Older daemons did not record the type; named mounts are volumes.
			if mp.Name != "" {
				mountType = mount.TypeVolume
			} else {
				mountType = mount.TypeBind
			}
		}

		var source string
		switch mountType {
		case mount.TypeBind:
			source = mp.Source
		case mount.TypeVolume:
			if mp.Driver != "" && mp.Driver != "local" {
				log.Warn().Str("volume_driver", mp.Driver).Msg("unsupported volume driver, skipping mount point")
				continue
			}
			if mp.Name == "" {
				log.Warn().Msg("volume mount point without a name, skipping")
				continue
			}
			source = filepath.Join("volumes", mp.Name, "_data")
		default:
			log.Warn().Str("type", string(mountType)).Msg("unsupported mount point type, skipping")
			continue
		}

		if source == "" {
			log.Warn().Msg("mount point without a source, skipping")
			continue
		}

		points = append(points, domain.MountPoint{
			Source:      s.underRoot(source),
			Destination: dst,
		})
	}
	return points
}

// underRoot resolves a recorded host path beneath the inspected root.
func (s *ContainerStore) underRoot(hostPath string) string {
	return filepath.Join(s.install.Root, strings.TrimLeft(hostPath, "/"))
}

// parseExposedPorts accepts the map form ({"80/tcp": {}}) and the list form
// (["80/tcp", "53/udp", "8080"]) and normalizes both into a nat.PortSet.
func parseExposedPorts(raw json.RawMessage) (nat.PortSet, error) {
	ports := nat.PortSet{}
	if len(raw) == 0 || string(raw) == "null" {
		return ports, nil
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for spec := range asMap {
			port, err := newPort(spec)
			if err != nil {
				return nil, err
			}
			ports[port] = struct{}{}
		}
		return ports, nil
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err != nil {
		return nil, err
	}
	for _, spec := range asList {
		port, err := newPort(spec)
		if err != nil {
			return nil, err
		}
		ports[port] = struct{}{}
	}
	return ports, nil
}

func newPort(spec string) (nat.Port, error) {
	proto, port := nat.SplitProtoPort(spec)
	return nat.NewPort(proto, port)
}
