// This file contains the strip and check commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fpstrip/cmd/fpstrip/ui"
	"fpstrip/internal/config"
	"fpstrip/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	stripDesignators bool
	stripSuffix      string
	stripOutputDir   string
)

// stripCmd runs the conversion once
var stripCmd = &cobra.Command{
	Use:   "strip",
	Short: "Strip courtyard elements from a footprint library",
	Long: `Processes every .kicad_mod file in the input library and writes the
stripped copies to the variant output directories.

Each recognized geometric element (fp_rect, fp_line, fp_poly, fp_circle,
fp_arc) on a courtyard layer is removed as a complete parenthesis-balanced
block. Footprints without a courtyard are copied through unchanged.

Examples:
  fpstrip strip -i APRLPrints.pretty
  fpstrip strip -i APRLPrints.pretty --designators --suffix -nodnofp`,
	RunE: runStrip,
}

// checkCmd inspects the library without writing anything
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report courtyard usage without modifying anything",
	Long: `Scans the input library and reports, per footprint, whether courtyard
layer tags are present and how many elements a strip would remove.`,
	RunE: runCheck,
}

// runStrip executes the pipeline once and prints the summary.
func runStrip(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyStripFlags(cfg)

	runner, err := pipeline.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(ui.RenderSummary(summary))

	if n := summary.Failures(); n > 0 {
		return fmt.Errorf("%d footprint(s) failed to process", n)
	}
	return nil
}

// applyStripFlags folds the strip command flags into the loaded config.
// --suffix and --output only make sense for a single-variant run.
func applyStripFlags(cfg *config.Config) {
	if stripDesignators {
		for i := range cfg.Variants {
			cfg.Variants[i].StripDesignators = true
		}
	}
	if stripSuffix != "" && len(cfg.Variants) == 1 {
		cfg.Variants[0].Suffix = stripSuffix
	}
	if stripOutputDir != "" && len(cfg.Variants) == 1 {
		cfg.Variants[0].OutputDir = stripOutputDir
	}
}

// runCheck inspects the library and prints the per-file report.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	reports, err := runner.Inspect()
	if err != nil {
		return err
	}

	fmt.Print(ui.RenderReports(cfg.InputDir, reports))

	for _, r := range reports {
		if r.Err != nil {
			return fmt.Errorf("some footprints could not be read")
		}
	}
	return nil
}

func init() {
	stripCmd.Flags().BoolVar(&stripDesignators, "designators", false, "Also remove the reference designator field")
	stripCmd.Flags().StringVar(&stripSuffix, "suffix", "", "Override the variant suffix (single-variant runs only)")
	stripCmd.Flags().StringVarP(&stripOutputDir, "output", "o", "", "Override the output directory (single-variant runs only)")
}
