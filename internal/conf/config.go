// config.go: settings struct and functions to load the application configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/yunjun/fungid-go/internal/errors"
)

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Host string // address to bind to
	Port string // port to listen on
}

// DetectorSettings contains settings for the object detection model.
type DetectorSettings struct {
	ModelPath  string        // path to the ONNX model weights
	LabelsPath string        // optional path to an external labels file
	Threshold  float64       // minimum confidence for a detection to be kept
	InputSize  int           // square input size the model expects
	Timeout    time.Duration // upper bound for a single inference call
}

// MediaSettings contains the directories for uploaded and annotated images.
type MediaSettings struct {
	UploadPath  string // directory for original uploads
	ResultsPath string // directory for annotated output images
}

// SQLiteSettings contains settings for the SQLite database output.
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the database file
}

// MySQLSettings contains settings for the MySQL database output.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings contains the database output settings.
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// LogSettings contains settings for the log file.
type LogSettings struct {
	Enabled bool
	Path    string
}

// Settings is the top-level application configuration.
type Settings struct {
	Debug bool

	Main struct {
		Name string      // node name, also used in logs
		Log  LogSettings // log file settings
	}

	WebServer WebServerSettings
	Detector  DetectorSettings
	Media     MediaSettings
	Output    OutputSettings
}

// Load reads the configuration file and returns the populated settings.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, errors.Newf("error initializing viper: %w", err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.Newf("error unmarshaling config into struct: %w", err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults apply.
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "fungid-go"),
	}, nil
}

// Validate checks settings that have no sensible fallback.
func (s *Settings) Validate() error {
	if s.Detector.Threshold < 0 || s.Detector.Threshold > 1 {
		return errors.Newf("detector.threshold must be within [0,1], got %f", s.Detector.Threshold).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if !s.Output.SQLite.Enabled && !s.Output.MySQL.Enabled {
		return errors.Newf("no database output enabled, enable output.sqlite or output.mysql").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// EnsureDirectories creates the upload and results directories if missing.
func (s *Settings) EnsureDirectories() error {
	for _, dir := range []string{s.Media.UploadPath, s.Media.ResultsPath} {
		if dir == "" {
			return errors.Newf("media directory path must not be empty").
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Newf("failed to create directory %q: %w", dir, err).
				Component("conf").
				Category(errors.CategoryFileIO).
				Build()
		}
	}
	return nil
}
