package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDevicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List adb devices and report availability.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			available := c.Availability.Check(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ADB available: %t\n", available)

			devices := c.Registry.Devices()
			if len(devices) == 0 {
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERIAL\tSTATE\tMODEL")
			for _, d := range devices {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.State, d.Model)
			}
			return w.Flush()
		},
	}
}
