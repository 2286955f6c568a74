package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"tasktracker/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Errors are
// written to stderr since the logger may not be configured yet.
func run(args []string, stdout, stderr io.Writer) int {
	defer logger.Sync()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		logger.L().Errorw("command failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Task tracker backend keyed by Snowflake ids",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config")

	root.AddCommand(
		newServeCmd(&configPath),
		newWorkerCmd(&configPath),
		newIDCmd(),
	)

	return root
}
