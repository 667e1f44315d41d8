package cli

import (
	"io"

	"github.com/spf13/cobra"

	"shotty/src/fleet"
	"shotty/src/report"
)

const projectFlagUsage = "Only instances for project (tag Project:<name>)"

func newVolumesCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "Commands for volumes",
	}
	cmd.AddCommand(newVolumesListCmd(stdout, stderr))
	return cmd
}

func newVolumesListCmd(stdout, stderr io.Writer) *cobra.Command {
	var project, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List EBS volumes attached to EC2 instances",
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
			w := report.NewWriter(format, stdout, fleet.VolumeHeaders...)
			if err := op.ListVolumes(ctx, project, func(r fleet.VolumeRow) error { return w.Write(r) }); err != nil {
				return err
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&project, "project", "", projectFlagUsage)
	addOutputFlag(cmd, &output)
	return cmd
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", string(report.FormatText), "Output format: text|table|json|yaml")
}
