package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigNormalize(t *testing.T) {
	c := Config{DataDir: "/var/lib/historian"}
	c.Normalize()

	assert.Equal(t, filepath.Join("/var/lib/historian", "exports"), c.ExportDir)
	assert.Equal(t, filepath.Join("/var/lib/historian", "backups"), c.BackupDir)
	assert.Equal(t, "info", c.LogLevel)

	// Explicit values survive normalization.
	c = Config{
		DataDir:   "/data",
		ExportDir: "/exports",
		BackupDir: "/backups",
		LogLevel:  "debug",
	}
	c.Normalize()
	assert.Equal(t, "/exports", c.ExportDir)
	assert.Equal(t, "/backups", c.BackupDir)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	c := Config{DataDir: "/data"}
	c.Normalize()
	assert.NoError(t, c.Validate())

	c = Config{}
	c.Normalize()
	assert.Error(t, c.Validate(), "missing data_dir should fail validation")

	c = Config{DataDir: "/data", LogLevel: "loud"}
	assert.Error(t, c.Validate(), "unknown log level should fail validation")
}
