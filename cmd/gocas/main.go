// Command gocas evaluates and transforms symbolic expressions from the
// command line.
//
// Usage:
//
//	gocas eval "2*x+3*x"
//	gocas diff "x^3" x
//	gocas solve "x^2 = 4" x
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	decimal    bool
	configPath string
	timeout    time.Duration

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gocas",
	Short: "gocas - exact symbolic algebra from the command line",
	Long: `gocas parses expressions into canonical form and applies exact
transforms: differentiation, integration, Laplace transforms, solving,
factoring and series expansion.

Settings come from --config, then GOCAS_* environment variables, then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newSession builds a session from the loaded configuration and the global
// flags.
func newSession(cmd *cobra.Command) (*gocas.Session, error) {
	st := cfg.Settings()
	if cmd.Flags().Changed("timeout") {
		st.Timeout = timeout
	}
	if decimal {
		st.DecimalOutput = true
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return gocas.NewSession(gocas.WithLogger(logger), gocas.WithConfig(st)), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&decimal, "decimal", false, "Print results as decimals")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", gocas.DefaultSettings().Timeout, "Deadline for each command")

	rootCmd.AddCommand(toolCommands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
