// Package main implements the fpstrip CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"fpstrip/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.1.0"

var (
	// Global flags
	verbose    bool
	configPath string
	inputDir   string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fpstrip",
	Short: "fpstrip - KiCad footprint courtyard stripper",
	Long: `fpstrip batch-processes KiCad footprint libraries (.pretty directories),
removing courtyard geometry (F.CrtYd / B.CrtYd elements) and optionally the
reference designator field, and writes the results to derivative libraries
with a filename suffix per variant.

Some board houses and panelization flows choke on courtyard outlines;
stripping them from a copy of the library keeps the original intact.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger from the logging config; --verbose wins
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err = loggerConfig(cfg.Logging, verbose).Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the strip pipeline once
		return runStrip(cmd, args)
	},
}

// versionCmd prints the fpstrip version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fpstrip version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fpstrip %s\n", version)
	},
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	return cfg, nil
}

// loggerConfig translates the logging config into a zap config. Unknown
// levels fall back to info; --verbose forces debug.
func loggerConfig(lc config.LoggingConfig, verbose bool) zap.Config {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	if lc.Format == "json" {
		zc.Encoding = "json"
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if l, err := zapcore.ParseLevel(lc.Level); err == nil {
		level = l
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: fpstrip.yaml)")
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "Input .pretty directory (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	// Add commands to root
	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
