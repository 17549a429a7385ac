package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yunjun/fungid-go/cmd/file"
	"github.com/yunjun/fungid-go/cmd/serve"
	"github.com/yunjun/fungid-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fungid",
		Short: "FungID-Go CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	// Add sub-commands to the root command.
	rootCmd.AddCommand(
		serve.Command(settings),
		file.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Sync the settings struct with viper so command-line arguments
		// take precedence over the config file.
		if err := viper.Unmarshal(settings); err != nil {
			return fmt.Errorf("error syncing settings: %w", err)
		}
		return settings.Validate()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.Detector.ModelPath, "model", "m", viper.GetString("detector.modelpath"), "Path to the detection model weights")
	rootCmd.PersistentFlags().Float64VarP(&settings.Detector.Threshold, "threshold", "t", viper.GetFloat64("detector.threshold"), "Confidence threshold for detections, value between 0.0 and 1.0")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding debug flag: %w", err)
	}
	if err := viper.BindPFlag("detector.modelpath", rootCmd.PersistentFlags().Lookup("model")); err != nil {
		return fmt.Errorf("error binding model flag: %w", err)
	}
	if err := viper.BindPFlag("detector.threshold", rootCmd.PersistentFlags().Lookup("threshold")); err != nil {
		return fmt.Errorf("error binding threshold flag: %w", err)
	}

	return nil
}
