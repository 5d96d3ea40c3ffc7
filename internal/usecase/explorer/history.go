package explorer

import (
	"strings"

	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/pkg/timestamp"
)

// History walks the layer chain top to base and merges each layer's build
// metadata, keyed by layer id. On v1 installations a layer that added no
// bytes only reports its size unless opts.ShowEmptyLayers is set.
func (c *Container) History(opts domain.HistoryOptions) (*domain.History, error) {
	layers, err := c.OrderedLayers()
	if err != nil {
		return nil, err
	}

	history := domain.NewHistory()
	for _, layerID := range layers {
		if _, ok := history.Get(layerID); ok {
			continue
		}

		info, err := c.storage.LayerInfo(layerID)
		if err != nil {
			return nil, err
		}

		if c.Version == domain.MetadataV1 && info.Size == 0 && !opts.ShowEmptyLayers {
			history.Set(layerID, domain.LayerHistory{Size: 0})
			continue
		}

		entry, err := layerHistory(info)
		if err != nil {
			return nil, err
		}
		history.Set(layerID, entry)
	}
	return history, nil
}

func layerHistory(info *domain.LayerInfo) (domain.LayerHistory, error) {
	entry := domain.LayerHistory{Size: info.Size}

	if info.Created != "" {
		created, err := timestamp.Format(info.Created)
		if err != nil {
			return entry, domain.WrapBadContainerError(err, "layer %s has an invalid creation date", info.ID)
		}
		entry.CreatedAt = created
	}
	if len(info.ContainerConfig.Cmd) > 0 {
		entry.ContainerCmd = strings.Join(info.ContainerConfig.Cmd, " ")
	}
	return entry, nil
}
