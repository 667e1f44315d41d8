package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"shotty/src/fleet"
	"shotty/src/report"
)

func newInstancesCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instances",
		Short: "Commands for instances",
	}
	cmd.AddCommand(newInstancesListCmd(stdout, stderr))
	cmd.AddCommand(newInstancesPowerCmd(stdout, fleet.ActionStart))
	cmd.AddCommand(newInstancesPowerCmd(stdout, fleet.ActionStop))
	cmd.AddCommand(newInstancesSnapshotCmd(stdout, stderr))
	return cmd
}

func newInstancesListCmd(stdout, stderr io.Writer) *cobra.Command {
	var project, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List EC2 instances",
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
			w := report.NewWriter(format, stdout, fleet.InstanceHeaders...)
			if err := op.ListInstances(ctx, project, func(r fleet.InstanceRow) error { return w.Write(r) }); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&project, "project", "", projectFlagUsage)
	addOutputFlag(cmd, &output)
	return cmd
}

func newInstancesPowerCmd(stdout io.Writer, action fleet.Action) *cobra.Command {
	var project string
	short := "Start EC2 instances"
	if action == fleet.ActionStop {
		short = "Stop EC2 instances"
	}
	cmd := &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, op, err := newOperator(cmd, stdout)
			if err != nil {
				return err
			}
			run := op.StartInstances
			if action == fleet.ActionStop {
				run = op.StopInstances
			}
			results, err := run(ctx, project)
			logResults(results)
			return err
		},
	}
	cmd.Flags().StringVar(&project, "project", "", projectFlagUsage)
	return cmd
}

func newInstancesSnapshotCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts fleet.SnapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create snapshots of all volumes",
		Long:  "Stop each instance, create a snapshot of every attached volume that has no snapshot in progress, then start the instance again.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, op, err := newOperator(cmd, stdout)
			if err != nil {
				return err
			}
			results, err := op.SnapshotInstances(ctx, opts)
			logResults(results)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.Project, "project", "", projectFlagUsage)
	cmd.Flags().BoolVar(&opts.Verbose, "verbose", false, "Print verbose output")
	return cmd
}

func logResults(results []fleet.Result) {
	var failed, skipped int
	for _, r := range results {
		switch {
		case r.Failed:
			failed++
		case r.Skipped:
			skipped++
		}
	}
	slog.Info("run complete",
		slog.Int("instances", len(results)),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped))
}
