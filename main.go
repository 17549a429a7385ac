package main

import (
	"fmt"
	"os"

	"github.com/yunjun/fungid-go/cmd"
	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logOptions := logging.Options{Debug: settings.Debug}
	if settings.Main.Log.Enabled {
		logOptions.FilePath = settings.Main.Log.Path
	}
	logging.Init(logOptions)
	defer logging.Close()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command error: %v\n", err)
		os.Exit(1)
	}
}
