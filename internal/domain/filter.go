package domain

// ContainerFilter selects containers during enumeration. An empty filter
// keeps everything.
type ContainerFilter struct {
	OnlyRunning bool
	// Repositories keeps containers whose image name starts with one of
	// these values.
	Repositories []string
	// ExcludeRepositories drops containers whose image name starts with
	// one of these values.
	ExcludeRepositories []string
}

// Match reports whether c passes the filter.
func (f ContainerFilter) Match(c *Container) bool {
	if f.OnlyRunning && !c.Running {
		return false
	}
	if len(f.Repositories) > 0 && !matchesAny(c, f.Repositories) {
		return false
	}
	return !matchesAny(c, f.ExcludeRepositories)
}

func matchesAny(c *Container, repositories []string) bool {
	for _, repo := range repositories {
		if c.MatchesRepository(repo) {
			return true
		}
	}
	return false
}

// HistoryOptions tunes history assembly.
type HistoryOptions struct {
	// ShowEmptyLayers keeps full entries for v1 layers that add no bytes.
	ShowEmptyLayers bool
}
