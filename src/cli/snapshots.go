package cli

import (
	"io"

	"github.com/spf13/cobra"

	"shotty/src/fleet"
	"shotty/src/report"
)

func newSnapshotsCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Commands for snapshots",
	}
	cmd.AddCommand(newSnapshotsListCmd(stdout, stderr))
	return cmd
}

func newSnapshotsListCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts fleet.SnapshotListOptions
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List EBS snapshots of instance volumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			ctx, op, err := newOperator(cmd, stdout)
			if err != nil {
				return err
			}
			w := report.NewWriter(format, stdout, fleet.SnapshotHeaders...)
			if err := op.ListSnapshots(ctx, opts, func(r fleet.SnapshotRow) error { return w.Write(r) }); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", projectFlagUsage)
	cmd.Flags().BoolVar(&opts.All, "all", false, "List all of the snapshots, not just the most recent successful.")
	addOutputFlag(cmd, &output)
	return cmd
}
