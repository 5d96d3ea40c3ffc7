// Package explorer implements the container directory: enumeration,
// lookup, filtering and summaries of the containers of one installation,
// plus the per-container layer, history and mount queries.
package explorer

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
	"github.com/bnema/dexplore/internal/usecase/identity"
	"github.com/bnema/dexplore/pkg/jsonfmt"
)

// Service answers queries against one detected installation. Containers
// are loaded fresh on every call.
type Service struct {
	install      domain.Installation
	storage      out.StorageDriver
	containers   out.ContainerStore
	repositories out.RepositoryStore
	runner       out.CommandRunner
	log          zerolog.Logger
}

var _ in.ExplorerService = (*Service)(nil)

// NewService creates an explorer service. runner may be nil when mount
// commands are never executed.
func NewService(
	install domain.Installation,
	storage out.StorageDriver,
	containers out.ContainerStore,
	repositories out.RepositoryStore,
	runner out.CommandRunner,
	log zerolog.Logger,
) *Service {
	return &Service{
		install:      install,
		storage:      storage,
		containers:   containers,
		repositories: repositories,
		runner:       runner,
		log:          log,
	}
}

// Installation implements in.ExplorerService.
func (s *Service) Installation() domain.Installation {
	return s.install
}

// GetAllContainers loads every container. Containers whose config cannot
// be read are skipped with a warning.
func (s *Service) GetAllContainers(ctx context.Context) ([]in.Container, error) {
	log := logging.ForUseCase(s.log, "GetAllContainers")

	ids, err := s.containers.ListIDs()
	if err != nil {
		return nil, err
	}

	containers := make([]in.Container, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.containers.Load(id)
		if err != nil {
			log.Warn().Err(err).Str(logging.FieldEntityID, id).Msg("skipping unreadable container")
			continue
		}
		containers = append(containers, NewContainer(c, s.storage))
	}

	log.Debug().Int(logging.FieldCount, len(containers)).Msg("containers loaded")
	return containers, nil
}

// GetContainer resolves idOrPrefix against the known container ids and
// loads the match. Load failures are returned, not skipped.
func (s *Service) GetContainer(ctx context.Context, idOrPrefix string) (in.Container, error) {
	ids, err := s.containers.ListIDs()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := identity.Resolve(identity.NounContainer, idOrPrefix, ids)
	if err := res.Err(); err != nil {
		return nil, err
	}

	c, err := s.containers.Load(res.ID)
	if err != nil {
		return nil, err
	}
	return NewContainer(c, s.storage), nil
}

// GetContainersList returns the containers passing filter.
func (s *Service) GetContainersList(ctx context.Context, filter domain.ContainerFilter) ([]in.Container, error) {
	all, err := s.GetAllContainers(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]in.Container, 0, len(all))
	for _, c := range all {
		if filter.Match(c.Info()) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// GetContainersJSON returns one summary per container passing filter.
func (s *Service) GetContainersJSON(ctx context.Context, filter domain.ContainerFilter) ([]domain.ContainerSummary, error) {
	containers, err := s.GetContainersList(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ContainerSummary, 0, len(containers))
	for _, c := range containers {
		summary, err := c.Summary()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// MountContainer implements in.ExplorerService.
func (s *Service) MountContainer(ctx context.Context, idOrPrefix, mountDir string, dryRun bool) ([]domain.MountCommand, error) {
	log := logging.ForUseCase(s.log, "MountContainer")

	c, err := s.GetContainer(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	commands, err := c.MountCommands(mountDir)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return commands, nil
	}
	if s.runner == nil {
		return nil, errors.New("no command runner configured")
	}

	for _, cmd := range commands {
		log.Info().Str(logging.FieldEntityID, c.Info().ID).Str("command", cmd.String()).Msg("running mount command")
		if err := s.runner.Run(ctx, cmd); err != nil {
			return nil, errors.Wrapf(err, "mount command failed: %s", cmd)
		}
	}
	return commands, nil
}

// GetRepositories implements in.ExplorerService.
func (s *Service) GetRepositories(_ context.Context) ([]domain.RepositoryIndex, error) {
	indexes, err := s.repositories.ListIndexes()
	if err != nil {
		return nil, err
	}
	if indexes == nil {
		indexes = []domain.RepositoryIndex{}
	}
	return indexes, nil
}

// GetRepositoriesString renders every repositories index as indented JSON.
func (s *Service) GetRepositoriesString(ctx context.Context) (string, error) {
	indexes, err := s.GetRepositories(ctx)
	if err != nil {
		return "", err
	}
	return jsonfmt.Pretty(indexes)
}
