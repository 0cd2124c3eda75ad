package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timotree3/holochain/cmd"
	"github.com/timotree3/holochain/config"
	"github.com/timotree3/holochain/config/presets"
	"github.com/timotree3/holochain/log"
)

// GetCommand returns the command that runs a node.
func GetCommand() *cobra.Command {
	conf := config.DefaultConfig()
	var configPath *string
	c := &cobra.Command{
		Use:   "node",
		Short: "start node",
		RunE: func(c *cobra.Command, args []string) error {
			if err := configure(c, *configPath, &conf); err != nil {
				return err
			}
			logger, err := log.FromConfig(conf.Logging)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app := New(
				WithConfig(&conf),
				WithLog(logger),
			)
			if err := app.Initialize(); err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			// Don't print usage on error from this point forward
			c.SilenceUsage = true

			// os.Interrupt for all systems, syscall.SIGTERM is mainly for docker.
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			err = app.Start(ctx)
			if cerr := app.Cleanup(); cerr != nil {
				logger.Error("failed to clean up", zap.Error(cerr))
			}
			return err
		},
	}

	configPath = cmd.AddFlags(c.PersistentFlags(), &conf)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(c *cobra.Command, args []string) {
			fmt.Println(cmd.Version, cmd.Branch, cmd.Commit)
		},
	}
	c.AddCommand(versionCmd)
	return c
}

// configure applies the preset, the config file and the flags to conf, in
// this order.
func configure(c *cobra.Command, configPath string, conf *config.Config) error {
	if preset := conf.Preset; preset != "" {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*conf = p
	}
	if err := config.Load(configPath, conf); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// apply CLI args to config
	if err := c.ParseFlags(os.Args[1:]); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	return nil
}
