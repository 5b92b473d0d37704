package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/portagekit/portage/pkg/config"
	"github.com/portagekit/portage/pkg/plugin"
	"github.com/portagekit/portage/pkg/presenter"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Convert and synchronize all discovered assets once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		presenter.SetQuiet(viper.GetBool("quiet"))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		p, err := plugin.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		summary := p.Summary()
		tools := p.Tools()

		presenter.Section("Synchronized")
		presenter.Info(fmt.Sprintf("skill tools: %d", len(tools)))
		if len(tools) > 0 {
			names := make([]string, 0, len(tools))
			for name := range tools {
				names = append(names, name)
			}
			sort.Strings(names)
			presenter.Info("  " + strings.Join(names, ", "))
		}
		if !summary.HasAgents {
			presenter.Info("agents: none discovered")
		}
		if !summary.HasCommands {
			presenter.Info("commands: none discovered")
		}
		if summary.HasHooks {
			presenter.Info("hook dispatch table built from settings")
		}

		presenter.Success("sync complete")
		return nil
	},
}
