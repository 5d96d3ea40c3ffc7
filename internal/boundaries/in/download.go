package in

import (
	"context"

	v1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/bnema/dexplore/internal/boundaries/out"
)

// DownloadService defines registry download operations.
type DownloadService interface {
	// Manifest fetches the image manifest of image.
	Manifest(ctx context.Context, image string) (*v1.Manifest, error)

	// PseudoDockerfile rebuilds a Dockerfile-like text from the image
	// config history.
	PseudoDockerfile(ctx context.Context, image string) (string, error)

	// DownloadPseudoDockerfile writes the pseudo Dockerfile to the output
	// directory and returns its path.
	DownloadPseudoDockerfile(ctx context.Context, image string, w out.ArtifactWriter) (string, error)

	// DownloadLayers writes the manifest, config and compressed layers.
	DownloadLayers(ctx context.Context, image string, w out.ArtifactWriter) ([]string, error)
}
