package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at release time via
// -ldflags "-X .../cmd/vindecode/commands.Version=v1.2.3".
var Version = "dev"

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vindecode version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
