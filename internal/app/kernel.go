package app

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/bnema/dexplore/internal/adapters/out/executor"
	"github.com/bnema/dexplore/internal/adapters/out/filesystem"
	"github.com/bnema/dexplore/internal/adapters/out/registry"
	"github.com/bnema/dexplore/internal/adapters/out/storage"
	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/boundaries/out"
	"github.com/bnema/dexplore/internal/logging"
	"github.com/bnema/dexplore/internal/usecase/detect"
	"github.com/bnema/dexplore/internal/usecase/download"
	"github.com/bnema/dexplore/internal/usecase/explorer"
)

// Kernel wires the services used by one CLI invocation.
//
// The inspected Docker root is only ever opened through a read-only
// filesystem.
type Kernel struct {
	cfg     Config
	version string
	log     zerolog.Logger
	rootFs  afero.Fs
	outFs   afero.Fs
	runner  out.CommandRunner
	cleanup func()
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithFilesystems replaces the OS filesystems used for the Docker root and
// for download output.
func WithFilesystems(root, output afero.Fs) KernelOption {
	return func(k *Kernel) {
		k.rootFs = afero.NewReadOnlyFs(root)
		k.outFs = output
	}
}

// WithRunner replaces the subprocess runner used to mount.
func WithRunner(runner out.CommandRunner) KernelOption {
	return func(k *Kernel) {
		k.runner = runner
	}
}

// NewKernel loads the configuration from v and builds the logger. Logs go
// to logOut.
func NewKernel(v *viper.Viper, configPath, version string, logOut io.Writer, opts ...KernelOption) (*Kernel, error) {
	cfg, err := LoadConfig(v, configPath)
	if err != nil {
		return nil, err
	}

	log, cleanup, err := logging.New(cfg.loggingConfig(), logOut)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	k := &Kernel{
		cfg:     cfg,
		version: version,
		log:     log,
		rootFs:  afero.NewReadOnlyFs(afero.NewOsFs()),
		outFs:   afero.NewOsFs(),
		cleanup: cleanup,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.runner == nil {
		k.runner = executor.NewRunner(log)
	}
	return k, nil
}

// Config returns the loaded configuration.
func (k *Kernel) Config() Config { return k.cfg }

// Logger returns the application logger.
func (k *Kernel) Logger() zerolog.Logger { return k.log }

// Explorer detects the installation at the configured Docker root and
// returns the explorer bound to it.
func (k *Kernel) Explorer(ctx context.Context) (in.ExplorerService, error) {
	install, err := detect.NewDetector(k.rootFs, k.log).SetRoot(ctx, k.cfg.DockerRoot)
	if err != nil {
		return nil, err
	}

	driver, err := storage.New(k.rootFs, install, k.log, storage.WithMountBinary(k.cfg.Mount.Binary))
	if err != nil {
		return nil, err
	}

	return explorer.NewService(
		install,
		driver,
		filesystem.NewContainerStore(k.rootFs, install, k.log),
		filesystem.NewRepositoryStore(k.rootFs, install, k.log),
		k.runner,
		k.log,
	), nil
}

// Downloader returns the registry downloader.
func (k *Kernel) Downloader() in.DownloadService {
	client := registry.NewClient(k.log,
		registry.WithInsecure(k.cfg.Download.Insecure),
		registry.WithUserAgent("dexplore/"+k.version),
	)
	return download.NewService(client, k.version, k.cfg.Download.Insecure, k.log)
}

// ArtifactWriter returns a writer for download output under dir, or under
// the configured output directory when dir is empty.
func (k *Kernel) ArtifactWriter(dir string) (out.ArtifactWriter, error) {
	if dir == "" {
		dir = k.cfg.Download.OutputDir
	}
	return filesystem.NewBlobWriter(k.outFs, dir, k.log)
}

// Close flushes and closes the log file, if any.
func (k *Kernel) Close() error {
	if k == nil || k.cleanup == nil {
		return nil
	}
	k.cleanup()
	return nil
}
