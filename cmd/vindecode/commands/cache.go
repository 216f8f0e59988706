package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/requestcontext"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached decode records",
	}
	cmd.AddCommand(c.newCacheInvalidateCmd())
	return cmd
}

func (c *CLI) newCacheInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <identifier>",
		Short: "Drop every cached record for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := requestcontext.WithCaller(cmd.Context(), "cli")

			eng, err := c.buildEngine(ctx, engineOptions{})
			if err != nil {
				return err
			}
			defer eng.close()

			removed, err := eng.orch.InvalidateCache(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", removed)
			return nil
		},
	}
}
