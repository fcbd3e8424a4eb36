// Package cmds implements the zdbg command line interface.
package cmds

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ryone9re/zdbg/pkg/config"
	"github.com/ryone9re/zdbg/pkg/logflags"
	"github.com/ryone9re/zdbg/pkg/proc"
	"github.com/ryone9re/zdbg/pkg/terminal"
)

const version string = "0.1.0"

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should
	// produce debug output.
	logOutput string

	conf *config.Config
)

const zdbgCommandLongDesc = `zdbg is a minimal breakpoint debugger for Linux/amd64.

It launches a target executable under ptrace with address space layout
randomization disabled, supports a single software breakpoint,
single-stepping and register inspection.`

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand := &cobra.Command{
		Use:   "zdbg",
		Short: "zdbg is a minimal breakpoint debugger for Linux/amd64.",
		Long:  zdbgCommandLongDesc,
	}
	registerLogFlags(rootCommand.PersistentFlags())

	execCommand := &cobra.Command{
		Use:   "exec <path/to/binary>",
		Short: "Execute a precompiled binary and begin a debug session.",
		Long: `Execute a precompiled binary and begin a debug session.

The session starts in the not-running state: set a breakpoint with
'break <address>' and start the target with 'run'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("you must provide a path to a binary")
			}
			return logflags.Setup(log, logOutput)
		},
		Run: execCmd,
	}
	rootCommand.AddCommand(execCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zdbg version: %s\n", version)
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

// registerLogFlags adds the logging flags shared by every subcommand.
func registerLogFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&log, "log", "", false, "Enable debug logging.")
	fs.StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output (debugger, ptrace).")
}

func execCmd(cmd *cobra.Command, args []string) {
	os.Exit(execute(args[0]))
}

func execute(target string) int {
	fullpath, err := filepath.Abs(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := os.Stat(fullpath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	term := terminal.New(proc.New(fullpath), conf)
	status, err := term.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return status
}
