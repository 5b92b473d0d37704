package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/portagekit/portage/pkg/config"
	"github.com/portagekit/portage/pkg/discovery"
	"github.com/portagekit/portage/pkg/presenter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered source assets per kind",
	RunE: func(_ *cobra.Command, _ []string) error {
		presenter.SetQuiet(viper.GetBool("quiet"))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		disc, err := discovery.NewDiscovery(discovery.WithRoots(cfg.ProjectRoot, cfg.UserRoot))
		if err != nil {
			return err
		}

		for _, kind := range discovery.Kinds() {
			assets := disc.Assets(kind)
			presenter.Section(fmt.Sprintf("%ss (%d)", kind, len(assets)))
			for _, asset := range assets {
				presenter.Info(fmt.Sprintf("%-30s %-8s %s", asset.Name, asset.Root, asset.Path))
			}
		}
		return nil
	},
}
