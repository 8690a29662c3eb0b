package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/statuswatch/status-plane/internal/api"
	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/dag"
	"github.com/statuswatch/status-plane/internal/database"
	"github.com/statuswatch/status-plane/internal/health"
	"github.com/statuswatch/status-plane/internal/logging"
	"github.com/statuswatch/status-plane/internal/monitor"
	"github.com/statuswatch/status-plane/internal/system"
	"github.com/statuswatch/status-plane/internal/valkey"
)

var (
	configPath string
	logger     zerolog.Logger
)

func newRootCmd(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "status-plane",
		Short: "Health aggregation service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// Source order determines precedence. The last source loaded
			// will override any previous values.
			var sources []*config.Source
			if configPath != "" {
				sources = append(sources, config.NewFileSource(configPath))
			}
			sources = append(sources,
				config.NewEnvVarSource(),
				config.NewPFlagSource(cmd.Flags()),
			)

			config.Provide(i, sources...)
			logging.Provide(i)
			health.Provide(i)
			system.Provide(i)
			database.Provide(i)
			valkey.Provide(i)
			dag.Provide(i)
			monitor.Provide(i)
			api.Provide(i)

			var err error
			logger, err = do.Invoke[zerolog.Logger](i)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return nil
		},
	}
}

func Execute() {
	i := do.New()
	rootCmd := newRootCmd(i)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-path", "c", "", "Path to the config file for this service.")
	rootCmd.PersistentFlags().StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	rootCmd.PersistentFlags().BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")

	rootCmd.AddCommand(newRunCommand(i))
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		if logger.GetLevel() == zerolog.NoLevel {
			// NoLevel indicates that the logger is uninitialized. In this
			// case we'll use our fallback logger.
			logging.Fatal(err, "command failed")
		} else {
			logger.Fatal().
				Err(err).
				Msg("command failed")
		}
	}
}
