package explorer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/dexplore/internal/boundaries/out/mocks"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/pkg/jsonfmt"
)

const (
	festivePerlman = "8e8b7f23eb7cbd4dfe7e91646ddd0e0f524218e25d50113559f078dfb2690206"
	reverentWing   = "10acac0b3466813c9e1f85e2aa7d06298e51fbfe86bbcb6b7a19dd33d3798f6a"
	gcrContainer   = "61ba4e6c012c782186c649466157e05adfd7caa5b551432de51043893cae5353"
	brokenID       = "f83f963c67cbd36055f690fc988c1e42be06c1253e80113d1d516778c06b2841"
	overlay2Mount  = "92fd3b3e7d6101bb701743c9518c45b0d036b898c8a3d7cae84e1a06e6829b53"
	busyboxImage   = "sha256:8ac48589692a53a9b8c2d1ceaa6b402665aa7fe667ba51ccc03002300856d8c7"
)

var overlay2Install = domain.Installation{
	Root:    "/docker",
	Driver:  domain.StorageDriverOverlay2,
	Version: domain.MetadataV2,
}

type fixture struct {
	storage      *mocks.MockStorageDriver
	containers   *mocks.MockContainerStore
	repositories *mocks.MockRepositoryStore
	runner       *mocks.MockCommandRunner
	svc          *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		storage:      new(mocks.MockStorageDriver),
		containers:   new(mocks.MockContainerStore),
		repositories: new(mocks.MockRepositoryStore),
		runner:       new(mocks.MockCommandRunner),
	}
	f.svc = NewService(overlay2Install, f.storage, f.containers, f.repositories, f.runner, zerolog.Nop())
	t.Cleanup(func() {
		f.storage.AssertExpectations(t)
		f.containers.AssertExpectations(t)
		f.repositories.AssertExpectations(t)
		f.runner.AssertExpectations(t)
	})
	return f
}

func festivePerlmanContainer() *domain.Container {
	return &domain.Container{
		ID:              festivePerlman,
		Name:            "/festive_perlman",
		StartTimestamp:  "2018-05-16T10:51:39.625989663Z",
		ConfigImageName: "busybox",
		ImageID:         busyboxImage,
		Running:         true,
		LogPath:         "/var/lib/docker/containers/" + festivePerlman + "/" + festivePerlman + "-json.log",
		MountID:         overlay2Mount,
		StorageName:     domain.StorageDriverOverlay2,
		Version:         domain.MetadataV2,
	}
}

func (f *fixture) expectAllContainers() {
	f.containers.On("ListIDs").Return([]string{reverentWing, gcrContainer, festivePerlman, brokenID}, nil)
	f.containers.On("Load", festivePerlman).Return(festivePerlmanContainer(), nil)
	f.containers.On("Load", reverentWing).Return(&domain.Container{
		ID: reverentWing, ConfigImageName: "busybox", Version: domain.MetadataV2,
	}, nil)
	f.containers.On("Load", gcrContainer).Return(&domain.Container{
		ID: gcrContainer, ConfigImageName: "gcr.io/google-containers/pause", Running: true, Version: domain.MetadataV2,
	}, nil)
	f.containers.On("Load", brokenID).Return(nil, domain.NewBadContainerError("container config file not found"))
}

func TestService_GetAllContainers_SkipsBrokenContainers(t *testing.T) {
	f := newFixture(t)
	f.expectAllContainers()

	containers, err := f.svc.GetAllContainers(context.Background())

	require.NoError(t, err)
	require.Len(t, containers, 3)
	for _, c := range containers {
		assert.Same(t, f.storage, c.Storage())
	}
	assert.Equal(t, reverentWing, containers[0].Info().ID)
}

func TestService_GetAllContainers_ListError(t *testing.T) {
	f := newFixture(t)
	f.containers.On("ListIDs").Return(nil, domain.NewBadStorageError("containers directory does not exist"))

	_, err := f.svc.GetAllContainers(context.Background())

	assert.True(t, errors.Is(err, domain.ErrBadStorage))
}

func TestService_GetContainer(t *testing.T) {
	f := newFixture(t)
	f.containers.On("ListIDs").Return([]string{reverentWing, gcrContainer, festivePerlman}, nil)
	f.containers.On("Load", gcrContainer).Return(&domain.Container{ID: gcrContainer}, nil)

	c, err := f.svc.GetContainer(context.Background(), "61ba4e6c012c782")

	require.NoError(t, err)
	assert.Equal(t, gcrContainer, c.Info().ID)
}

func TestService_GetContainer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		wantErr string
	}{
		{
			name:   "ambiguous",
			prefix: "",
			wantErr: `Too many container IDs starting with "": ` +
				reverentWing + ", " + gcrContainer + ", " + festivePerlman,
		},
		{
			name:    "unknown",
			prefix:  "xx",
			wantErr: `Could not find any container ID starting with "xx"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.containers.On("ListIDs").Return([]string{festivePerlman, gcrContainer, reverentWing}, nil)

			_, err := f.svc.GetContainer(context.Background(), tt.prefix)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrContainer))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestService_GetContainer_LoadErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	f.containers.On("ListIDs").Return([]string{brokenID}, nil)
	f.containers.On("Load", brokenID).Return(nil, domain.NewBadContainerError("container config file not found"))

	_, err := f.svc.GetContainer(context.Background(), "f83f")

	assert.True(t, errors.Is(err, domain.ErrBadContainer))
}

func TestService_GetContainer_FullIDWithoutConfig(t *testing.T) {
	f := newFixture(t)
	f.containers.On("ListIDs").Return([]string{festivePerlman, brokenID}, nil)
	f.containers.On("Load", brokenID).
		Return(nil, domain.NewBadContainerError("container config file /docker/containers/%s/config.v2.json not found", brokenID))

	_, err := f.svc.GetContainer(context.Background(), brokenID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadContainer))
	assert.False(t, errors.Is(err, domain.ErrContainer))
	assert.Contains(t, err.Error(), brokenID+"/config.v2.json")
}

func TestService_GetContainersList(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.ContainerFilter
		want   []string
	}{
		{
			name: "no filter",
			want: []string{reverentWing, gcrContainer, festivePerlman},
		},
		{
			name:   "only running",
			filter: domain.ContainerFilter{OnlyRunning: true},
			want:   []string{gcrContainer, festivePerlman},
		},
		{
			name:   "exclude repository",
			filter: domain.ContainerFilter{ExcludeRepositories: []string{"gcr.io"}},
			want:   []string{reverentWing, festivePerlman},
		},
		{
			name:   "keep repository",
			filter: domain.ContainerFilter{Repositories: []string{"gcr.io"}},
			want:   []string{gcrContainer},
		},
		{
			name:   "running busybox",
			filter: domain.ContainerFilter{OnlyRunning: true, Repositories: []string{"busy"}},
			want:   []string{festivePerlman},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectAllContainers()

			containers, err := f.svc.GetContainersList(context.Background(), tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(containers))
			for _, c := range containers {
				got = append(got, c.Info().ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_GetContainersJSON(t *testing.T) {
	f := newFixture(t)
	f.expectAllContainers()
	f.storage.On("UpperDir", mock.MatchedBy(func(c *domain.Container) bool { return c.ID == festivePerlman })).
		Return("/docker/overlay2/" + overlay2Mount + "/diff")

	summaries, err := f.svc.GetContainersJSON(context.Background(), domain.ContainerFilter{
		OnlyRunning:         true,
		ExcludeRepositories: []string{"gcr.io"},
	})

	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, domain.ContainerSummary{
		ImageName:   "busybox",
		ContainerID: festivePerlman,
		ImageID:     "8ac48589692a53a9b8c2d1ceaa6b402665aa7fe667ba51ccc03002300856d8c7",
		StartDate:   "2018-05-16T10:51:39.625989",
		MountID:     overlay2Mount,
		UpperDir:    "/docker/overlay2/" + overlay2Mount + "/diff",
		LogPath:     "/var/lib/docker/containers/" + festivePerlman + "/" + festivePerlman + "-json.log",
	}, summaries[0])
}

func TestService_MountContainer(t *testing.T) {
	commands := []domain.MountCommand{
		{"/bin/mount", "-t", "overlay", "overlay", "-o", "ro,lowerdir=/a:/b", "/mnt"},
		{"/bin/mount", "--bind", "-o", "ro", "/docker/opt/vols/bind", "/mnt/opt"},
	}

	t.Run("dry run", func(t *testing.T) {
		f := newFixture(t)
		f.containers.On("ListIDs").Return([]string{festivePerlman}, nil)
		f.containers.On("Load", festivePerlman).Return(festivePerlmanContainer(), nil)
		f.storage.On("MountCommands", mock.Anything, "/mnt").Return(commands, nil)

		got, err := f.svc.MountContainer(context.Background(), "8e8b", "/mnt", true)

		require.NoError(t, err)
		assert.Equal(t, commands, got)
		f.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("runs in order", func(t *testing.T) {
		f := newFixture(t)
		f.containers.On("ListIDs").Return([]string{festivePerlman}, nil)
		f.containers.On("Load", festivePerlman).Return(festivePerlmanContainer(), nil)
		f.storage.On("MountCommands", mock.Anything, "/mnt").Return(commands, nil)
		first := f.runner.On("Run", mock.Anything, []string(commands[0])).Return(nil).Once()
		f.runner.On("Run", mock.Anything, []string(commands[1])).Return(nil).Once().NotBefore(first)

		_, err := f.svc.MountContainer(context.Background(), "8e8b", "/mnt", false)

		require.NoError(t, err)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		f := newFixture(t)
		f.containers.On("ListIDs").Return([]string{festivePerlman}, nil)
		f.containers.On("Load", festivePerlman).Return(festivePerlmanContainer(), nil)
		f.storage.On("MountCommands", mock.Anything, "/mnt").Return(commands, nil)
		f.runner.On("Run", mock.Anything, []string(commands[0])).Return(errors.New("exit status 32")).Once()

		_, err := f.svc.MountContainer(context.Background(), "8e8b", "/mnt", false)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "mount command failed")
		assert.Contains(t, err.Error(), "exit status 32")
		f.runner.AssertNumberOfCalls(t, "Run", 1)
	})
}

func TestService_GetRepositoriesString(t *testing.T) {
	f := newFixture(t)

	busybox := domain.NewRepositories()
	tags := domain.NewTags()
	tags.Set("busybox:latest", busyboxImage)
	tags.Set("busybox@sha256:58ac43b2cc92c687a32c8be6278e50a063579655fe3090125dcb2af0ff9e1a64", busyboxImage)
	busybox.Set("busybox", tags)

	f.repositories.On("ListIndexes").Return([]domain.RepositoryIndex{
		{Path: "/docker/image/overlay/repositories.json", Repositories: domain.NewRepositories()},
		{Path: "/docker/image/overlay2/repositories.json", Repositories: busybox},
	}, nil)

	got, err := f.svc.GetRepositoriesString(context.Background())

	require.NoError(t, err)
	want := `[
    {
        "Repositories": {},
        "path": "/docker/image/overlay/repositories.json"
    },
    {
        "Repositories": {
            "busybox": {
                "busybox:latest": "` + busyboxImage + `",
                "busybox@sha256:58ac43b2cc92c687a32c8be6278e50a063579655fe3090125dcb2af0ff9e1a64": "` + busyboxImage + `"
            }
        },
        "path": "/docker/image/overlay2/repositories.json"
    }
]
`
	assert.Equal(t, want, got)

	var parsed []domain.RepositoryIndex
	require.NoError(t, json.Unmarshal([]byte(got), &parsed))
	rendered, err := jsonfmt.Pretty(parsed)
	require.NoError(t, err)
	assert.Equal(t, got, rendered)
}

func TestService_GetRepositoriesString_Empty(t *testing.T) {
	f := newFixture(t)
	f.repositories.On("ListIndexes").Return(nil, nil)

	got, err := f.svc.GetRepositoriesString(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "[]\n", got)
}
