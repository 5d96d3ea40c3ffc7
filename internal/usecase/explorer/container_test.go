package explorer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/dexplore/internal/boundaries/out/mocks"
	"github.com/bnema/dexplore/internal/domain"
)

const (
	aufsV1Top  = "1cee97b18f87b5fa91633db35f587e2c65c093facfa2cbbe83d5ebe06e1d9125"
	aufsV1Base = "df557f39d413a1408f5c28d8aab2892f927237ec22e903ef04b331305130ab38"
	aufsV2Top  = "sha256:7968321274dc6b6171697c33df7815310468e694ac5be0ec03ff053bb135e768"
)

func TestContainer_History_V2(t *testing.T) {
	storage := new(mocks.MockStorageDriver)
	c := NewContainer(&domain.Container{ID: "7b02fb3e", ImageID: aufsV2Top, Version: domain.MetadataV2}, storage)
	storage.On("OrderedLayers", c.Container).Return([]string{aufsV2Top}, nil)
	storage.On("LayerInfo", aufsV2Top).Return(&domain.LayerInfo{
		ID:              aufsV2Top,
		Created:         "2017-01-13T22:13:54.401355854Z",
		ContainerConfig: domain.LayerContainerConfig{Cmd: []string{"/bin/sh", "-c", "#(nop) ", `CMD ["sh"]`}},
	}, nil)

	history, err := c.History(domain.HistoryOptions{})

	require.NoError(t, err)
	require.Equal(t, 1, history.Len())
	entry, ok := history.Get(aufsV2Top)
	require.True(t, ok)
	assert.Equal(t, domain.LayerHistory{
		CreatedAt:    "2017-01-13T22:13:54.401355",
		ContainerCmd: `/bin/sh -c #(nop)  CMD ["sh"]`,
		Size:         0,
	}, entry)
	storage.AssertExpectations(t)
}

func v1Storage(c *domain.Container) *mocks.MockStorageDriver {
	storage := new(mocks.MockStorageDriver)
	storage.On("OrderedLayers", c).Return([]string{aufsV1Top, aufsV1Base}, nil)
	storage.On("LayerInfo", aufsV1Top).Return(&domain.LayerInfo{
		ID:              aufsV1Top,
		Created:         "2018-12-26T08:20:42.831353376Z",
		ContainerConfig: domain.LayerContainerConfig{Cmd: []string{"/bin/sh", "-c", "#(nop) ", `CMD ["sh"]`}},
	}, nil)
	storage.On("LayerInfo", aufsV1Base).Return(&domain.LayerInfo{
		ID:      aufsV1Base,
		Created: "2018-12-26T08:20:42.687925334Z",
		ContainerConfig: domain.LayerContainerConfig{Cmd: []string{
			"/bin/sh", "-c", "#(nop) ADD file:ce026b62356eec3ad1214f92be2c9dc063fe205bd5e600be3492c4dfb17148bd in / ",
		}},
		Size: 1154361,
	}, nil)
	return storage
}

func TestContainer_History_V1(t *testing.T) {
	info := &domain.Container{ID: "de44dd97", ImageID: aufsV1Top, Version: domain.MetadataV1}
	c := NewContainer(info, v1Storage(info))

	history, err := c.History(domain.HistoryOptions{})
	require.NoError(t, err)

	var keys []string
	for pair := history.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{aufsV1Top, aufsV1Base}, keys)
	assert.Equal(t, domain.LayerHistory{Size: 0}, history.Value(aufsV1Top))
	assert.Equal(t, domain.LayerHistory{
		CreatedAt:    "2018-12-26T08:20:42.687925",
		ContainerCmd: "/bin/sh -c #(nop) ADD file:ce026b62356eec3ad1214f92be2c9dc063fe205bd5e600be3492c4dfb17148bd in / ",
		Size:         1154361,
	}, history.Value(aufsV1Base))
}

func TestContainer_History_V1ShowEmptyLayers(t *testing.T) {
	info := &domain.Container{ID: "de44dd97", ImageID: aufsV1Top, Version: domain.MetadataV1}
	c := NewContainer(info, v1Storage(info))

	history, err := c.History(domain.HistoryOptions{ShowEmptyLayers: true})

	require.NoError(t, err)
	assert.Equal(t, "2018-12-26T08:20:42.831353", history.Value(aufsV1Top).CreatedAt)
	assert.Equal(t, `/bin/sh -c #(nop)  CMD ["sh"]`, history.Value(aufsV1Top).ContainerCmd)
}

func TestContainer_History_KeysMatchOrderedLayers(t *testing.T) {
	info := &domain.Container{ID: "de44dd97", ImageID: aufsV1Top, Version: domain.MetadataV1}
	c := NewContainer(info, v1Storage(info))

	layers, err := c.OrderedLayers()
	require.NoError(t, err)
	history, err := c.History(domain.HistoryOptions{})
	require.NoError(t, err)

	require.Equal(t, len(layers), history.Len())
	for _, layer := range layers {
		_, ok := history.Get(layer)
		assert.True(t, ok, layer)
	}
}

func TestContainer_History_Errors(t *testing.T) {
	t.Run("missing layer metadata", func(t *testing.T) {
		storage := new(mocks.MockStorageDriver)
		c := NewContainer(&domain.Container{ID: "abc", Version: domain.MetadataV2}, storage)
		storage.On("OrderedLayers", mock.Anything).Return([]string{aufsV2Top}, nil)
		storage.On("LayerInfo", aufsV2Top).Return(nil, domain.NewBadContainerError("could not find layer metadata file"))

		_, err := c.History(domain.HistoryOptions{})

		assert.True(t, errors.Is(err, domain.ErrBadContainer))
	})

	t.Run("invalid creation date", func(t *testing.T) {
		storage := new(mocks.MockStorageDriver)
		c := NewContainer(&domain.Container{ID: "abc", Version: domain.MetadataV2}, storage)
		storage.On("OrderedLayers", mock.Anything).Return([]string{aufsV2Top}, nil)
		storage.On("LayerInfo", aufsV2Top).Return(&domain.LayerInfo{ID: aufsV2Top, Created: "yesterday"}, nil)

		_, err := c.History(domain.HistoryOptions{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBadContainer))
		assert.Contains(t, err.Error(), "invalid creation date")
	})
}

func TestContainer_History_BaseLayerWithoutCommand(t *testing.T) {
	storage := new(mocks.MockStorageDriver)
	c := NewContainer(&domain.Container{ID: "abc", Version: domain.MetadataV2}, storage)
	storage.On("OrderedLayers", mock.Anything).Return([]string{aufsV2Top}, nil)
	storage.On("LayerInfo", aufsV2Top).Return(&domain.LayerInfo{ID: aufsV2Top}, nil)

	history, err := c.History(domain.HistoryOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.LayerHistory{}, history.Value(aufsV2Top))
}

func TestContainer_LayerInfo_ResolvesPrefix(t *testing.T) {
	info := &domain.Container{ID: "de44dd97", ImageID: aufsV1Top, Version: domain.MetadataV1}
	storage := v1Storage(info)
	c := NewContainer(info, storage)

	layer, err := c.LayerInfo("df557f")
	require.NoError(t, err)
	assert.Equal(t, aufsV1Base, layer.ID)

	_, err = c.LayerInfo("zz")
	require.Error(t, err)
	assert.Equal(t, `Could not find any layer ID starting with "zz"`, err.Error())
}

func TestContainer_Summary(t *testing.T) {
	storage := new(mocks.MockStorageDriver)
	storage.On("UpperDir", mock.Anything).Return("")

	t.Run("v1 omits mount id", func(t *testing.T) {
		c := NewContainer(&domain.Container{
			ID:              "de44dd97",
			ConfigImageName: "busybox",
			ImageID:         aufsV1Top,
			StartTimestamp:  "2018-12-27T10:53:17.409426Z",
			MountID:         "de44dd97",
			Version:         domain.MetadataV1,
		}, storage)

		summary, err := c.Summary()

		require.NoError(t, err)
		assert.Empty(t, summary.MountID)
		assert.Equal(t, aufsV1Top, summary.ImageID)
		assert.Equal(t, "2018-12-27T10:53:17.409426", summary.StartDate)
	})

	t.Run("invalid start date", func(t *testing.T) {
		c := NewContainer(&domain.Container{ID: "abc", StartTimestamp: "never"}, storage)

		_, err := c.Summary()

		assert.True(t, errors.Is(err, domain.ErrBadContainer))
	})
}

func TestContainer_VolumeMountCommands(t *testing.T) {
	storage := new(mocks.MockStorageDriver)
	c := NewContainer(&domain.Container{ID: "abc"}, storage)
	want := []domain.MountCommand{{"/bin/mount", "--bind", "-o", "ro", "/docker/opt/vols/bind", "/mnt/opt"}}
	storage.On("VolumeMountCommands", c.Container, "/mnt").Return(want, nil)

	got, err := c.VolumeMountCommands("/mnt")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
