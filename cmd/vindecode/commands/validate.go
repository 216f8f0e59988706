package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <identifier>",
		Short: "Check whether an identifier is a well-formed VIN or chassis number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vehicle.ParseIdentifier(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "valid %s: %s\n", id.Kind(), id)

			switch id.Kind() {
			case vehicle.KindVIN:
				fmt.Fprintf(out, "  wmi: %s  vds: %s  vis: %s\n", id.WMI(), id.VDS(), id.VIS())
			case vehicle.KindChassisNumber:
				if parts, ok := vehicle.ParseChassis(id.String()); ok {
					fmt.Fprintf(out, "  model code: %s  serial: %s\n",
						parts.ModelCode, parts.SerialNumber)
				}
			}
			return nil
		},
	}
}
