// Command portage reconciles extension assets authored for one coding-agent
// host (skills, agents, commands, hooks) into the constructs of a second
// host, and keeps them in sync as the source files change.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/portagekit/portage/pkg/config"
	"github.com/portagekit/portage/pkg/logger"
	"github.com/portagekit/portage/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "portage",
	Short: "Bridge extension assets between coding-agent hosts",
	Long: `Portage discovers skills, agents, commands and hook declarations under the
source asset roots, converts them into the target host's constructs, and can
keep the converted output hot-reloaded as the sources change.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("PORTAGE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.portage")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	config.SetDefaults()

	flags := rootCmd.PersistentFlags()
	flags.String("project-root", "", "project-scoped source asset root")
	flags.String("user-root", "", "user-scoped source asset root")
	flags.String("host-dir", "", "target host asset directory")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Bool("quiet", false, "suppress non-error output")
	bindFlags(flags)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags maps kebab-case flag names onto their snake_case config keys.
func bindFlags(flags *pflag.FlagSet) {
	bindings := map[string]string{
		"project_root": "project-root",
		"user_root":    "user-root",
		"host_dir":     "host-dir",
		"log_level":    "log-level",
		"log_format":   "log-format",
		"quiet":        "quiet",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "command failed")
		os.Exit(1)
	}
}
