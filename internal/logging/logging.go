// Package logging initializes the application-wide structured loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	structuredLogger *slog.Logger
	initOnce         sync.Once
	fileCloser       io.Closer
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Options controls log destinations and verbosity.
type Options struct {
	Debug    bool
	FilePath string // when set, JSON logs also go to a rotating file
}

// Init initializes the logging system. JSON output goes to stdout (and the
// rotating log file when configured), human-readable text to stderr.
func Init(opts Options) {
	initOnce.Do(func() {
		level := slog.LevelInfo
		if opts.Debug {
			level = slog.LevelDebug
		}

		jsonOut := io.Writer(os.Stdout)
		if opts.FilePath != "" {
			rotator := &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    10, // MB
				MaxBackups: 5,
				MaxAge:     7, // days
				Compress:   true,
			}
			fileCloser = rotator
			jsonOut = io.MultiWriter(os.Stdout, rotator)
		}

		structuredHandler := slog.NewJSONHandler(jsonOut, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceLevelNames,
		})
		structuredLogger = slog.New(structuredHandler)
		slog.SetDefault(structuredLogger)
	})
}

// ForService returns a child logger tagged with the service/component name.
func ForService(name string) *slog.Logger {
	if structuredLogger == nil {
		Init(Options{})
	}
	return structuredLogger.With("service", name)
}

// Close flushes and closes the rotating log file, if one was configured.
func Close() error {
	if fileCloser != nil {
		return fileCloser.Close()
	}
	return nil
}
