// Package serve implements the HTTP server command.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yunjun/fungid-go/internal/api"
	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/datastore"
	"github.com/yunjun/fungid-go/internal/detector"
	"github.com/yunjun/fungid-go/internal/logging"
	"github.com/yunjun/fungid-go/internal/observability"
	"github.com/yunjun/fungid-go/internal/pipeline"
)

// Command creates the serve command, which runs the detection web service.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection web service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	setupFlags(cmd)

	return cmd
}

func setupFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("host", "H", viper.GetString("webserver.host"), "Address to bind the HTTP server to")
	cmd.Flags().StringP("port", "p", viper.GetString("webserver.port"), "Port the HTTP server listens on")

	if err := viper.BindPFlag("webserver.host", cmd.Flags().Lookup("host")); err != nil {
		cobra.CheckErr(err)
	}
	if err := viper.BindPFlag("webserver.port", cmd.Flags().Lookup("port")); err != nil {
		cobra.CheckErr(err)
	}
}

func runServer(settings *conf.Settings) error {
	logger := logging.ForService("serve")

	if err := settings.EnsureDirectories(); err != nil {
		return err
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	// schema bootstrap failures are fatal, a half-migrated store must not serve
	if err := store.EnsureSchema(); err != nil {
		return err
	}

	userID, err := store.DefaultUserID()
	if err != nil {
		return err
	}

	det, err := detector.New(settings)
	if err != nil {
		return err
	}
	defer det.Close()

	metrics := observability.NewMetrics()
	pl := pipeline.New(settings, det, store, metrics, userID)
	controller := api.New(settings, store, pl, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting web service",
		"model", settings.Detector.ModelPath,
		"threshold", settings.Detector.Threshold)

	return controller.Start(ctx)
}
