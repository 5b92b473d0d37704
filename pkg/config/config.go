// Package config produces the single resolved configuration record consumed
// by the rest of the system. Discovery and merging of candidate config
// locations is viper's job; everything downstream sees one Config value.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved configuration record.
type Config struct {
	ProjectRoot string `mapstructure:"project_root"`
	UserRoot    string `mapstructure:"user_root"`
	HostDir     string `mapstructure:"host_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	Skills SkillsConfig `mapstructure:"skills"`
	Hooks  HooksConfig  `mapstructure:"hooks"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// SkillsConfig controls skill conversion.
type SkillsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Allowed []string `mapstructure:"allowed"`
}

// HooksConfig controls hook dispatch.
type HooksConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// TimeoutSeconds bounds each spawned hook command. Zero disables the
	// bound entirely, leaving a hung command to stall its tool invocation.
	TimeoutSeconds int `mapstructure:"timeout"`
	// EventMap overrides the default source-event to host-phase mapping,
	// e.g. "SessionEnd" -> "session.idle".
	EventMap map[string]string `mapstructure:"event_map"`
}

// WatchConfig controls the reload coordinator.
type WatchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMs int  `mapstructure:"debounce_ms"`
}

// SetDefaults registers every config default with viper. Called once from the
// CLI before flags are bound.
func SetDefaults() {
	viper.SetDefault("project_root", "./.claude")
	viper.SetDefault("user_root", "")
	viper.SetDefault("host_dir", "./.opencode")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("skills.enabled", true)
	viper.SetDefault("hooks.enabled", true)
	viper.SetDefault("hooks.timeout", 60)
	viper.SetDefault("watch.enabled", true)
	viper.SetDefault("watch.debounce_ms", 300)
}

// Load unmarshals the resolved viper state into a Config and fills in the
// user root when it was left empty.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if cfg.UserRoot == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve user home directory")
		}
		cfg.UserRoot = filepath.Join(homeDir, ".claude")
	}

	return &cfg, nil
}
