// This file contains the watch command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fpstrip/cmd/fpstrip/ui"
	"fpstrip/internal/pipeline"
	"fpstrip/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd keeps the derivative libraries in sync with the input library
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the library and re-strip footprints on change",
	Long: `Runs the pipeline once, then watches the input library and re-strips a
footprint whenever it is created or modified. Runs until interrupted.`,
	RunE: runWatch,
}

// runWatch runs the pipeline once and then blocks on filesystem events.
func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown; registered before the initial pass so an
	// interrupt during it cancels cleanly too.
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

	runner, err := pipeline.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	// Initial pass so the output libraries start in sync. The timeout
	// bounds this pass only; watching itself runs until interrupted.
	runCtx, runCancel := context.WithTimeout(ctx, timeout)
	summary, err := runner.Run(runCtx)
	runCancel()
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderSummary(summary))

	w, err := watcher.New(cfg.InputDir, runner, cfg.GetDebounce(), logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.InputDir)

	<-ctx.Done()
	w.Stop()

	stats := w.GetStats()
	logger.Info("Watcher stopped",
		zap.Int("reprocessed", stats.Reprocessed),
		zap.Int("created", stats.FilesCreated),
		zap.Int("modified", stats.FilesModified),
		zap.Int("errors", stats.Errors))

	return nil
}
