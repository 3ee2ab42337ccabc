package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve device availability over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				c.Availability.Watch(ctx, a.cfg.Server.PollInterval)
				return nil
			})
			g.Go(func() error {
				return c.Server.Run(ctx, a.cfg.Logger.ServiceName)
			})
			return g.Wait()
		},
	}

	cmd.Flags().String("addr", "", "listen address")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
