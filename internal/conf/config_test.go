package conf

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	setDefaultConfig()

	settings := &Settings{}
	require.NoError(t, viper.Unmarshal(settings))
	return settings
}

func TestDefaults(t *testing.T) {
	settings := loadDefaults(t)

	assert.Equal(t, "8888", settings.WebServer.Port)
	assert.InDelta(t, 0.25, settings.Detector.Threshold, 1e-9)
	assert.Equal(t, 640, settings.Detector.InputSize)
	assert.Equal(t, 30*time.Second, settings.Detector.Timeout)
	assert.True(t, settings.Output.SQLite.Enabled)
	assert.False(t, settings.Output.MySQL.Enabled)
	assert.Equal(t, "static/uploads", settings.Media.UploadPath)
	assert.Equal(t, "static/results", settings.Media.ResultsPath)
}

func TestValidateThresholdBounds(t *testing.T) {
	settings := loadDefaults(t)
	require.NoError(t, settings.Validate())

	settings.Detector.Threshold = 1.5
	assert.Error(t, settings.Validate())

	settings.Detector.Threshold = -0.1
	assert.Error(t, settings.Validate())
}

func TestValidateRequiresOutput(t *testing.T) {
	settings := loadDefaults(t)
	settings.Output.SQLite.Enabled = false
	settings.Output.MySQL.Enabled = false

	assert.Error(t, settings.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	settings := loadDefaults(t)
	dir := t.TempDir()
	settings.Media.UploadPath = dir + "/uploads"
	settings.Media.ResultsPath = dir + "/results"

	require.NoError(t, settings.EnsureDirectories())
	assert.DirExists(t, settings.Media.UploadPath)
	assert.DirExists(t, settings.Media.ResultsPath)
}
