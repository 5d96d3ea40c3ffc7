package domain

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Tags maps a tag or digest reference to the layer id it resolves to.
type Tags = orderedmap.OrderedMap[string, string]

// Repositories maps an image name to its tags, in file order.
type Repositories = orderedmap.OrderedMap[string, *Tags]

// RepositoryIndex is one repositories index file found on disk.
type RepositoryIndex struct {
	Repositories *Repositories `json:"Repositories"`
	Path         string        `json:"path"`
}

// NewRepositories returns an empty, non-nil Repositories map.
func NewRepositories() *Repositories {
	return orderedmap.New[string, *Tags]()
}

// NewTags returns an empty, non-nil Tags map.
func NewTags() *Tags {
	return orderedmap.New[string, string]()
}
