// Package mocks provides testify mocks of the output ports.
package mocks

import (
	"context"
	"io"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/stretchr/testify/mock"

	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/pkg/imageref"
)

// MockStorageDriver is a mock implementation of out.StorageDriver
type MockStorageDriver struct {
	mock.Mock
}

func (m *MockStorageDriver) Name() domain.StorageDriverName {
	args := m.Called()
	return args.Get(0).(domain.StorageDriverName)
}

func (m *MockStorageDriver) OrderedLayers(c *domain.Container) ([]string, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorageDriver) LayerInfo(layerID string) (*domain.LayerInfo, error) {
	args := m.Called(layerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LayerInfo), args.Error(1)
}

func (m *MockStorageDriver) LayerSize(layerID string) (int64, error) {
	args := m.Called(layerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorageDriver) MountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	args := m.Called(c, mountDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MountCommand), args.Error(1)
}

func (m *MockStorageDriver) VolumeMountCommands(c *domain.Container, mountDir string) ([]domain.MountCommand, error) {
	args := m.Called(c, mountDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MountCommand), args.Error(1)
}

func (m *MockStorageDriver) UpperDir(c *domain.Container) string {
	args := m.Called(c)
	return args.String(0)
}

// MockContainerStore is a mock implementation of out.ContainerStore
type MockContainerStore struct {
	mock.Mock
}

func (m *MockContainerStore) ListIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContainerStore) Load(containerID string) (*domain.Container, error) {
	args := m.Called(containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Container), args.Error(1)
}

// MockRepositoryStore is a mock implementation of out.RepositoryStore
type MockRepositoryStore struct {
	mock.Mock
}

func (m *MockRepositoryStore) ListIndexes() ([]domain.RepositoryIndex, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositoryIndex), args.Error(1)
}

// MockRegistryClient is a mock implementation of out.RegistryClient
type MockRegistryClient struct {
	mock.Mock
}

func (m *MockRegistryClient) Image(ctx context.Context, ref imageref.Reference) (v1.Image, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(v1.Image), args.Error(1)
}

// MockCommandRunner is a mock implementation of out.CommandRunner
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, args []string) error {
	called := m.Called(ctx, args)
	return called.Error(0)
}

// MockArtifactWriter is a mock implementation of out.ArtifactWriter
type MockArtifactWriter struct {
	mock.Mock
}

func (m *MockArtifactWriter) Dir() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockArtifactWriter) WriteFile(name string, data []byte) error {
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockArtifactWriter) PutBlob(name string, data io.Reader, size int64) error {
	args := m.Called(name, data, size)
	return args.Error(0)
}
