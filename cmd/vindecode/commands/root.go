// Package commands implements the vindecode CLI commands.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Shekel-Africa/vin-package-sub000/internal/platform/config"
)

// CLI is the vindecode command tree plus the configuration it wires from.
type CLI struct {
	cfg     config.Config
	rootCmd *cobra.Command
}

// New builds the command tree. Configuration comes from the environment;
// flags override per invocation.
func New(cfg config.Config) *CLI {
	rootCmd := &cobra.Command{
		Use:   "vindecode",
		Short: "Decode and reconcile vehicle identifiers",
		Long: `vindecode resolves VINs and Japanese chassis numbers through a
prioritized chain of decoding sources and reconciles the answers into a
single vehicle record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{cfg: cfg, rootCmd: rootCmd}

	rootCmd.AddCommand(c.newValidateCmd())
	rootCmd.AddCommand(c.newDecodeCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
