package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/pkg/jsonfmt"
)

func newHistoryCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <container-id>",
		Short: "Show the build history of a container's image",
		Long: `Show the layers of a container's image, topmost first, with the command
that created each layer. Abbreviated container ids are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := state.kernel(cmd)
			if err != nil {
				return err
			}
			defer k.Close()

			svc, err := k.Explorer(cmd.Context())
			if err != nil {
				return err
			}
			opts := domain.HistoryOptions{ShowEmptyLayers: k.Config().History.ShowEmptyLayers}
			return runHistory(cmd.Context(), svc, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("show-empty", false, "Show the full entry of layers with no content")
	_ = state.v.BindPFlag("history.show_empty_layers", cmd.Flags().Lookup("show-empty"))

	return cmd
}

func runHistory(ctx context.Context, svc in.ExplorerService, id string, opts domain.HistoryOptions, out io.Writer) error {
	container, err := svc.GetContainer(ctx, id)
	if err != nil {
		return err
	}
	history, err := container.History(opts)
	if err != nil {
		return err
	}
	rendered, err := jsonfmt.Pretty(history)
	if err != nil {
		return err
	}
	return cliWriteLine(out, rendered)
}
