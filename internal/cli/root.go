// Package cli is the gui-agent command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gui-agent/internal/di"
	"gui-agent/internal/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config

	// newContainer builds the dependency graph once the config is loaded.
	newContainer func(cfg *config.Config, out io.Writer) (*di.Container, error)
}

func defaultContainer(cfg *config.Config, out io.Writer) (*di.Container, error) {
	return di.NewContainer(cfg, out)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{v: viper.New(), newContainer: defaultContainer})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gui-agent",
		Short:         "Drive the local display or Android devices from a vision-language model.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logger.level", root.PersistentFlags().Lookup("log-level"))
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newRunCmd(a),
		newDevicesCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) container(cmd *cobra.Command) (*di.Container, error) {
	c, err := a.newContainer(a.cfg, cmd.OutOrStdout())
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return c, nil
}
