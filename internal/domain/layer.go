package domain

import orderedmap "github.com/wk8/go-ordered-map/v2"

// LayerInfo is the build metadata recorded for one image layer.
type LayerInfo struct {
	ID              string
	Parent          string
	Created         string
	ContainerConfig LayerContainerConfig
	Size            int64
}

// LayerContainerConfig holds the parts of a layer's container_config we use.
type LayerContainerConfig struct {
	Cmd []string
}

// LayerHistory is one entry of a container's combined build history.
type LayerHistory struct {
	CreatedAt    string `json:"created_at,omitempty"`
	ContainerCmd string `json:"container_cmd,omitempty"`
	Size         int64  `json:"size"`
}

// History maps layer ids to their history, in top-to-base order.
type History = orderedmap.OrderedMap[string, LayerHistory]

// NewHistory returns an empty History.
func NewHistory() *History {
	return orderedmap.New[string, LayerHistory]()
}
