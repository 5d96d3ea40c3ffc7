// Package cli implements the CLI adapter for dexplore.
// This package provides Cobra commands that delegate to the app layer.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/dexplore/internal/adapters/in/cli/ui/styles"
	"github.com/bnema/dexplore/internal/app"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootState is shared by the subcommands of one invocation.
type rootState struct {
	v          *viper.Viper
	configPath string
	debug      bool
	kernelOpts []app.KernelOption
}

// kernel loads the configuration and builds the services. Callers close it.
func (s *rootState) kernel(cmd *cobra.Command) (*app.Kernel, error) {
	if s.debug {
		s.v.Set("logging.level", "debug")
	}
	return app.NewKernel(s.v, s.configPath, Version, cmd.ErrOrStderr(), s.kernelOpts...)
}

// NewRootCmd creates the root command for the dexplore CLI. kernelOpts are
// forwarded to the app kernel.
func NewRootCmd(kernelOpts ...app.KernelOption) *cobra.Command {
	state := &rootState{
		v:          app.NewViper(),
		kernelOpts: kernelOpts,
	}

	rootCmd := &cobra.Command{
		Use:   "dexplore",
		Short: "dexplore - offline Docker installation explorer",
		Long: `dexplore reads a Docker root directory directly, without a running
daemon, and reconstructs containers, their image layer history and the
read-only mount commands reproducing their root filesystem.

It is meant for forensics on seized or offline disks: the Docker root is
never written to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&state.configPath, "config", "c", "", "Path to config file")
	flags.StringP("docker-directory", "r", app.DefaultDockerRoot, "Path to the Docker root directory")
	flags.BoolVarP(&state.debug, "debug", "d", false, "Enable debug logging")
	_ = state.v.BindPFlag("docker_root", flags.Lookup("docker-directory"))

	rootCmd.AddCommand(newListCmd(state))
	rootCmd.AddCommand(newHistoryCmd(state))
	rootCmd.AddCommand(newMountCmd(state))
	rootCmd.AddCommand(newDownloadCmd(state))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("dexplore %s\n", Version)
			cmd.Printf("Commit: %s\n", Commit)
			cmd.Printf("Build Date: %s\n", BuildDate)
		},
	}
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(version, commit, date string) {
	Version = version
	Commit = commit
	BuildDate = date
}

// Execute runs the CLI with args and returns the process exit status.
// Failures are reported as one line on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, kernelOpts ...app.KernelOption) int {
	rootCmd := NewRootCmd(kernelOpts...)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		msg := strings.ReplaceAll(strings.TrimSpace(err.Error()), "\n", " ")
		if isTerminal(stderr) {
			msg = styles.RenderError(msg)
		} else {
			msg = "Error: " + msg
		}
		_ = cliWriteLine(stderr, msg)
		return 1
	}
	return 0
}
