package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/boundaries/out"
)

type downloadOptions struct {
	Layers bool
}

func newDownloadCmd(state *rootState) *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download <image>",
		Short: "Fetch an image's pseudo Dockerfile or layers from a registry",
		Long: `Fetch an image from a registry and write a pseudo Dockerfile rebuilt
from its history. With --layers, write the manifest, the config and every
compressed layer instead. Images without a registry are looked up on the
Docker Hub; "foo" means "library/foo:latest".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := state.kernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			w, err := k.ArtifactWriter("")
			if err != nil {
				return err
			}
			return runDownload(cmd.Context(), k.Downloader(), args[0], w, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("output", "o", ".", "Directory receiving the downloaded files")
	cmd.Flags().BoolVar(&opts.Layers, "layers", false, "Download the image layers instead of the pseudo Dockerfile")
	cmd.Flags().Bool("insecure", false, "Allow plain HTTP and unverified TLS registries")
	_ = state.v.BindPFlag("download.output_dir", cmd.Flags().Lookup("output"))
	_ = state.v.BindPFlag("download.insecure", cmd.Flags().Lookup("insecure"))

	return cmd
}

func runDownload(ctx context.Context, svc in.DownloadService, image string, w out.ArtifactWriter, opts downloadOptions, stdout io.Writer) error {
	if !opts.Layers {
		path, err := svc.DownloadPseudoDockerfile(ctx, image, w)
		if err != nil {
			return err
		}
		return cliWriteLine(stdout, cliRenderSuccess(stdout, "Pseudo Dockerfile written to "+path))
	}

	files, err := svc.DownloadLayers(ctx, image, w)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := cliWriteLine(stdout, cliRenderListItem(stdout, file)); err != nil {
			return err
		}
	}
	return cliWritef(stdout, "%s\n", cliRenderSuccess(stdout, "Image files written to "+w.Dir()))
}
