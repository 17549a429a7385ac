// Package file implements the one-shot file detection command.
package file

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/datastore"
	"github.com/yunjun/fungid-go/internal/detector"
	"github.com/yunjun/fungid-go/internal/observability"
	"github.com/yunjun/fungid-go/internal/pipeline"
)

// Command creates the file command for analyzing a single image file.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "file [input.jpg]",
		Short: "Analyze a single image file",
		Long:  `Run mushroom detection on one image and persist the result.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd.Context(), settings, args[0])
		},
	}
}

func runFile(ctx context.Context, settings *conf.Settings, path string) error {
	if err := settings.EnsureDirectories(); err != nil {
		return err
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

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

	pl := pipeline.New(settings, det, store, observability.NewMetrics(), userID)

	if ctx == nil {
		ctx = context.Background()
	}

	outcome, err := pl.ProcessFile(ctx, path)
	if err != nil {
		return err
	}
	if !outcome.Success {
		fmt.Println(outcome.Message)
		return nil
	}

	fmt.Printf("%s (%.2f) %s\n", outcome.Label, outcome.Confidence, outcome.Advisory)
	fmt.Printf("annotated image: %s\n", outcome.ResultImage)
	return nil
}
