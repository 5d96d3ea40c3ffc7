package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/dexplore/internal/adapters/in/cli/ui/components"
	"github.com/bnema/dexplore/internal/boundaries/in"
	"github.com/bnema/dexplore/internal/domain"
	"github.com/bnema/dexplore/pkg/jsonfmt"
)

const (
	listAllContainers     = "all_containers"
	listRunningContainers = "running_containers"
	listRepositories      = "repositories"

	formatJSON  = "json"
	formatTable = "table"
)

type listOptions struct {
	Format              string
	Repositories        []string
	ExcludeRepositories []string
}

func newListCmd(state *rootState) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list {all_containers|running_containers|repositories}",
		Short: "List containers or image repositories",
		Long: `List the containers of the installation, only the ones marked running,
or the repositories indexes mapping image tags to image ids.`,
		ValidArgs: []string{listAllContainers, listRunningContainers, listRepositories},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
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
			return runList(cmd.Context(), svc, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", formatJSON, "Output format for containers (json or table)")
	cmd.Flags().StringSliceVar(&opts.Repositories, "repository", nil, "Only list containers whose image name starts with this repository")
	cmd.Flags().StringSliceVar(&opts.ExcludeRepositories, "exclude-repository", nil, "Skip containers whose image name starts with this repository")

	return cmd
}

func runList(ctx context.Context, svc in.ExplorerService, what string, opts listOptions, out io.Writer) error {
	if what == listRepositories {
		repositories, err := svc.GetRepositoriesString(ctx)
		if err != nil {
			return err
		}
		return cliWritef(out, "%s", repositories)
	}

	filter := domain.ContainerFilter{
		OnlyRunning:         what == listRunningContainers,
		Repositories:        opts.Repositories,
		ExcludeRepositories: opts.ExcludeRepositories,
	}

	switch opts.Format {
	case formatJSON:
		summaries, err := svc.GetContainersJSON(ctx, filter)
		if err != nil {
			return err
		}
		rendered, err := jsonfmt.Pretty(summaries)
		if err != nil {
			return err
		}
		return cliWritef(out, "%s", rendered)
	case formatTable:
		containers, err := svc.GetContainersList(ctx, filter)
		if err != nil {
			return err
		}
		return renderContainerTable(containers, out)
	default:
		return fmt.Errorf("unknown format %q, expected json or table", opts.Format)
	}
}

func renderContainerTable(containers []in.Container, out io.Writer) error {
	styled := isTerminal(out)
	now := time.Now()

	rows := make([][]string, 0, len(containers))
	for _, c := range containers {
		info := c.Info()
		rows = append(rows, []string{
			formatShortID(info.ID),
			info.Name,
			info.ConfigImageName,
			formatCreated(info.CreationTimestamp, now),
			formatState(info.Running, styled),
			formatPorts(info),
		})
	}

	if err := cliWriteLine(out, components.ContainerTable(rows, !styled)); err != nil {
		return err
	}
	return cliWritef(out, "\nTotal containers: %d\n", len(containers))
}
