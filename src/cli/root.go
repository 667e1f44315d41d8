package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command for the shotty CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	cmd := &cobra.Command{
		Use:           "shotty",
		Short:         "Shotty manages snapshots of EC2 instance volumes",
		Long:          "Shotty lists EC2 instances, their EBS volumes and snapshots, and stops, snapshots and restarts instances, optionally scoped to a Project tag.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getOptions(cmd)
			if err != nil {
				return err
			}
			return setupLogging(stderr, opts.LogLevel)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newVolumesCmd(stdout, stderr))
	cmd.AddCommand(newSnapshotsCmd(stdout, stderr))
	cmd.AddCommand(newInstancesCmd(stdout, stderr))

	return cmd
}

// Execute runs the CLI with the process stdio.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
