package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shotty/src/version"
)

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "shotty %s\n", version.Version)
		},
	}
}
