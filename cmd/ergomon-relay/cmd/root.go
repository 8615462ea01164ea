package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ergomon/internal/config"
	"github.com/oshokin/ergomon/internal/service/relay"
	"github.com/oshokin/ergomon/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the latest alerts are persisted.
	stateFile string

	// rootCmd represents the base command for running the gRPC relay.
	rootCmd = &cobra.Command{
		Use:   "ergomon-relay [listen-address]",
		Short: "Run the alert relay gRPC server.",
		Long: `Starts the gRPC relay that receives alerts forwarded by monitors.

The relay listens on the specified address or uses relay.listen_address from the configuration.
The latest alert per category is persisted to a JSON file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &relay.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return relay.Run(ctx, options)
		},
	}

	// latestCmd prints the latest alerts from a running relay.
	latestCmd = &cobra.Command{
		Use:   "latest [relay-address]",
		Short: "Print the latest alert per category from a running relay.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var address string
			if len(args) > 0 {
				address = args[0]
			}

			options := &relay.LatestOptions{
				ConfigPath: configPath,
				Address:    address,
			}

			return relay.PrintLatest(ctx, options, cmd.OutOrStdout())
		},
	}
)

// Execute runs the ergomon-relay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to persist the latest alerts")

	rootCmd.AddCommand(latestCmd)
}
