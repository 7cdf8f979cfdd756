package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrewThomasson/sound-monitor/cmd/analyze"
	"github.com/DrewThomasson/sound-monitor/cmd/realtime"
	"github.com/DrewThomasson/sound-monitor/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sound-monitor",
		Short: "Noise monitoring and recording system",
		Long:  "Monitors ambient sound levels, records noise events exceeding a configured threshold and logs them for analysis.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		return rootCmd
	}

	rootCmd.AddCommand(
		realtime.Command(settings),
		analyze.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().Float64VarP(&settings.Monitor.ThresholdDB, "threshold", "t", viper.GetFloat64("monitor.thresholddb"), "Detection threshold in dB")
	rootCmd.PersistentFlags().Float64Var(&settings.Monitor.CalibrationOffset, "calibration", viper.GetFloat64("monitor.calibrationoffset"), "Additive dB calibration offset")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "database", viper.GetString("output.sqlite.path"), "Path to the SQLite event database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
