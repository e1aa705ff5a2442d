package types

import (
	"path/filepath"

	"github.com/gookit/validate"
)

// Config holds process-level configuration for the historian store and its
// managers. It is built once at startup (from file, env, or flags) and
// injected explicitly; there is no process-wide singleton.
type Config struct {
	DataDir   string `mapstructure:"data_dir" json:"data_dir" validate:"required" message:"data_dir is required"`
	ExportDir string `mapstructure:"export_dir" json:"export_dir"`
	BackupDir string `mapstructure:"backup_dir" json:"backup_dir"`
	LogLevel  string `mapstructure:"log_level" json:"log_level" validate:"in:trace,debug,info,warn,error"`
}

// Normalize fills unset fields with defaults derived from DataDir.
func (c *Config) Normalize() {
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(c.DataDir, "exports")
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.DataDir, "backups")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return v.Errors.OneError()
	}
	return nil
}
