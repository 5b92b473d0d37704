package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/portagekit/portage/pkg/config"
	"github.com/portagekit/portage/pkg/plugin"
	"github.com/portagekit/portage/pkg/presenter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge with hot reload until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		presenter.SetQuiet(viper.GetBool("quiet"))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Watch.Enabled {
			return errors.New("watching is disabled in configuration")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("shutting down...")
			cancel()
		}()

		p, err := plugin.New(ctx, cfg)
		if err != nil {
			return err
		}

		presenter.Info("watching source roots, press Ctrl+C to stop")
		if err := p.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
