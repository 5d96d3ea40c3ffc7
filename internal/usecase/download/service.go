// Package download implements the registry downloader: manifest lookup,
// pseudo Dockerfile reconstruction and blob download.
package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/rs/zerolog"

	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/internal/logging"
	"github.com/bnema/dexplore/pkg/imageref"
)

const (
	// DockerfileName is the file written by DownloadPseudoDockerfile.
	DockerfileName = "Dockerfile"

	nopPrefix   = "/bin/sh -c #(nop) "
	shellPrefix = "/bin/sh -c "
)

// Service downloads image metadata and blobs from a registry.
type Service struct {
	registry out.RegistryClient
	version  string
	nameOpts []name.Option
	log      zerolog.Logger
}

var _ in.DownloadService = (*Service)(nil)

// NewService creates a download service. version is written in the pseudo
// Dockerfile header; insecure allows plain HTTP registries.
func NewService(registry out.RegistryClient, version string, insecure bool, log zerolog.Logger) *Service {
	var opts []name.Option
	if insecure {
		opts = append(opts, name.Insecure)
	}
	return &Service{
		registry: registry,
		version:  version,
		nameOpts: opts,
		log:      logging.ForUseCase(log, "Download"),
	}
}

func (s *Service) image(ctx context.Context, image string) (imageref.Reference, v1.Image, error) {
	ref, err := imageref.Parse(image, s.nameOpts...)
	if err != nil {
		return imageref.Reference{}, nil, domain.WrapDownloaderError(err, "invalid image %q", image)
	}
	img, err := s.registry.Image(ctx, ref)
	if err != nil {
		return ref, nil, err
	}
	return ref, img, nil
}

// Manifest implements in.DownloadService.
func (s *Service) Manifest(ctx context.Context, image string) (*v1.Manifest, error) {
	ref, img, err := s.image(ctx, image)
	if err != nil {
		return nil, err
	}
	manifest, err := img.Manifest()
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not read manifest of %s", ref)
	}
	return manifest, nil
}

// PseudoDockerfile implements in.DownloadService. Each history step
// becomes one line: #(nop) steps keep their instruction, shell steps are
// written as RUN.
func (s *Service) PseudoDockerfile(ctx context.Context, image string) (string, error) {
	ref, img, err := s.image(ctx, image)
	if err != nil {
		return "", err
	}
	cfg, err := img.ConfigFile()
	if err != nil {
		return "", domain.WrapDownloaderError(err, "could not read config of %s", ref)
	}

	steps := make([]string, 0, len(cfg.History))
	for _, h := range cfg.History {
		if step := dockerfileStep(h.CreatedBy); step != "" {
			steps = append(steps, step)
		}
	}

	header := fmt.Sprintf("# Pseudo Dockerfile\n# Generated by dexplore (%s)\n\n", s.version)
	return header + strings.Join(steps, "\n"), nil
}

func dockerfileStep(createdBy string) string {
	switch {
	case strings.HasPrefix(createdBy, nopPrefix):
		return strings.TrimLeft(strings.TrimPrefix(createdBy, nopPrefix), " ")
	case strings.HasPrefix(createdBy, shellPrefix):
		return "RUN " + strings.TrimPrefix(createdBy, shellPrefix)
	default:
		return createdBy
	}
}

// DownloadPseudoDockerfile implements in.DownloadService.
func (s *Service) DownloadPseudoDockerfile(ctx context.Context, image string, w out.ArtifactWriter) (string, error) {
	dockerfile, err := s.PseudoDockerfile(ctx, image)
	if err != nil {
		return "", err
	}
	if err := w.WriteFile(DockerfileName, []byte(dockerfile)); err != nil {
		return "", domain.WrapDownloaderError(err, "could not write %s", DockerfileName)
	}

	path := filepath.Join(w.Dir(), DockerfileName)
	s.log.Info().Str(logging.FieldPath, path).Msg("pseudo Dockerfile written")
	return path, nil
}

// DownloadLayers implements in.DownloadService. It writes manifest.json,
// the config blob as <digest>.json and every layer as <digest>.tar.gz, and
// returns the written file names in that order.
func (s *Service) DownloadLayers(ctx context.Context, image string, w out.ArtifactWriter) ([]string, error) {
	ref, img, err := s.image(ctx, image)
	if err != nil {
		return nil, err
	}

	rawManifest, err := img.RawManifest()
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not read manifest of %s", ref)
	}
	if err := w.WriteFile("manifest.json", rawManifest); err != nil {
		return nil, domain.WrapDownloaderError(err, "could not write manifest of %s", ref)
	}
	written := []string{"manifest.json"}

	configName, err := img.ConfigName()
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not read config digest of %s", ref)
	}
	rawConfig, err := img.RawConfigFile()
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not read config of %s", ref)
	}
	configFile := configName.String() + ".json"
	if err := w.WriteFile(configFile, rawConfig); err != nil {
		return nil, domain.WrapDownloaderError(err, "could not write config of %s", ref)
	}
	written = append(written, configFile)

	layers, err := img.Layers()
	if err != nil {
		return nil, domain.WrapDownloaderError(err, "could not list layers of %s", ref)
	}
	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := s.downloadLayer(layer, w)
		if err != nil {
			return nil, domain.WrapDownloaderError(err, "could not download layer of %s", ref)
		}
		written = append(written, file)
	}

	s.log.Info().
		Str("image", ref.String()).
		Int(logging.FieldCount, len(layers)).
		Str(logging.FieldPath, w.Dir()).
		Msg("image layers downloaded")
	return written, nil
}

func (s *Service) downloadLayer(layer v1.Layer, w out.ArtifactWriter) (string, error) {
	digest, err := layer.Digest()
	if err != nil {
		return "", err
	}
	size, err := layer.Size()
	if err != nil {
		return "", err
	}
	rc, err := layer.Compressed()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	file := digest.String() + ".tar.gz"
	if err := w.PutBlob(file, rc, size); err != nil {
		return "", err
	}
	return file, nil
}
