// Config loading for the historian CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/historian/pkg/types"
)

const (
	configFileName = "historian"
	configFileType = "yaml"

	defaultDataDir = ".historian-db"
)

// loadConfig reads historian.yaml (or the --config file) with environment
// overrides, applies flag overrides, and validates the result. A missing
// config file is not an error; defaults apply.
func loadConfig() (types.Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_level", "info")

	v.BindEnv("data_dir", "HISTORIAN_DATA_DIR")
	v.BindEnv("export_dir", "HISTORIAN_EXPORT_DIR")
	v.BindEnv("backup_dir", "HISTORIAN_BACKUP_DIR")
	v.BindEnv("log_level", "HISTORIAN_LOG_LEVEL")

	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.historian")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only an explicitly named file is required to exist.
			if flagConfig != "" {
				return types.Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
