package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/bnema/dexplore/internal/boundaries/in"
)

type mountOptions struct {
	DryRun bool
}

func newMountCmd(state *rootState) *cobra.Command {
	var opts mountOptions

	cmd := &cobra.Command{
		Use:   "mount <container-id> <destination>",
		Short: "Mount a container's root filesystem read-only",
		Long: `Rebuild the union filesystem of a container read-only under destination,
then bind its volumes and bind mounts on top. Requires root privileges unless
--dry-run only prints the commands.`,
		Args: cobra.ExactArgs(2),
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
			return runMount(cmd.Context(), svc, args[0], args[1], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the mount commands without running them")

	return cmd
}

func runMount(ctx context.Context, svc in.ExplorerService, id, destination string, opts mountOptions, out io.Writer) error {
	commands, err := svc.MountContainer(ctx, id, destination, opts.DryRun)
	if err != nil {
		return err
	}

	if opts.DryRun {
		for _, command := range commands {
			if err := cliWriteLine(out, command.String()); err != nil {
				return err
			}
		}
		return nil
	}

	return cliWriteLine(out, cliRenderSuccess(out, "Container mounted on "+destination))
}
