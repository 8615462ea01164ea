package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/service/monitor"
	"github.com/oshokin/ergomon/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string
	// replay drives the clock from frame timestamps.
	replay bool
	// distanceCm is the measured calibration distance.
	distanceCm float64
	// dryRun prints the calibrated focal length without saving it.
	dryRun bool
	// force overwrites an existing configuration file.
	force bool

	// errConfigExists is returned by init when the file is already there.
	errConfigExists = errors.New("configuration file already exists, use --force to overwrite")

	// rootCmd represents the base command for analyzing landmark frames.
	rootCmd = &cobra.Command{
		Use:   "ergomon [frames.ndjson]",
		Short: "Watch fatigue, viewing distance and posture from facial landmarks.",
		Long: `Reads facial landmark frames as NDJSON and raises ergonomic alerts.

Each line is one frame: {"timestamp":..,"width":..,"height":..,"points":[[x,y,z],...]}.
Frames are read from the given file or from standard input when no file or "-" is given.
Eye closure, blink rate and PERCLOS are tracked for fatigue, the inter-eye span gives the
viewing distance and a head pose solve gives the pitch used for posture.
Alerts are rate limited per category and delivered to the sinks enabled in the configuration:
speech, a GPIO buzzer, the remote relay and a websocket dashboard.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &monitor.Options{
				ConfigPath: configPath,
				InputPath:  inputPath(args),
				Replay:     replay,
				LogLevel:   logLevel,
			}

			return monitor.Run(ctx, options)
		},
	}

	// calibrateCmd computes the camera focal length.
	calibrateCmd = &cobra.Command{
		Use:   "calibrate [frames.ndjson]",
		Short: "Calibrate the camera focal length at a known distance.",
		Long: `Averages the face width over frames captured while sitting at a measured distance
and stores the resulting focal length in the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &monitor.CalibrateOptions{
				ConfigPath: configPath,
				InputPath:  inputPath(args),
				Distance:   distanceCm,
				DryRun:     dryRun,
			}

			focalLength, err := monitor.Calibrate(ctx, options)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "focal length: %.1f px\n", focalLength)

			return err
		},
	}

	// initCmd writes the default configuration.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return errConfigExists
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", configPath)

			return err
		},
	}
)

// Execute runs the ergomon CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return monitor.StdinPath
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "override the configured log level")
	rootCmd.Flags().BoolVarP(&replay, "replay", "r", false, "use frame timestamps instead of the wall clock")

	calibrateCmd.Flags().Float64VarP(&distanceCm, "distance", "d", 0, "measured distance to the camera in centimeters")
	calibrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the focal length without saving it")

	err := calibrateCmd.MarkFlagRequired("distance")
	if err != nil {
		panic(err)
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	rootCmd.AddCommand(calibrateCmd, initCmd)
}
