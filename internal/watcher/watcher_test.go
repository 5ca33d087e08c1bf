package watcher

// goleak is deliberately not used here: fsnotify keeps internal goroutines
// alive past Close on some platforms.

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fpstrip/internal/config"
	"fpstrip/internal/pipeline"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixture = `(footprint "R_0805"
	(layer "F.Cu")
	(fp_rect
		(start -1.68 -0.95)
		(end 1.68 0.95)
		(layer "F.CrtYd")
	)
	(fp_line
		(start -0.2 -0.7)
		(end 0.2 -0.7)
		(layer "F.SilkS")
	)
)`

func setup(t *testing.T) (*config.Config, *pipeline.Runner) {
	t.Helper()
	root := t.TempDir()
	inputDir := filepath.Join(root, "Lib.pretty")
	require.NoError(t, os.MkdirAll(inputDir, 0755))

	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	require.NoError(t, os.MkdirAll(cfg.OutputDirFor(cfg.Variants[0]), 0755))

	runner, err := pipeline.NewRunner(cfg, zap.NewNop())
	require.NoError(t, err)
	return cfg, runner
}

func TestStartStop(t *testing.T) {
	cfg, runner := setup(t)

	w, err := New(cfg.InputDir, runner, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsWatching())

	// Second Start is a no-op.
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestStartAfterStop(t *testing.T) {
	cfg, runner := setup(t)

	w, err := New(cfg.InputDir, runner, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	// A stopped watcher holds a closed filesystem handle: restarting must
	// fail cleanly, never panic on the previous run's channels.
	assert.Error(t, w.Start(context.Background()))
	assert.False(t, w.IsWatching())

	// And stopping again stays a no-op.
	w.Stop()
}

func TestStopAfterContextCancel(t *testing.T) {
	cfg, runner := setup(t)

	w, err := New(cfg.InputDir, runner, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	// The event loop exits on its own; Stop must still return promptly.
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestStartMissingDir(t *testing.T) {
	_, runner := setup(t)

	w, err := New(filepath.Join(t.TempDir(), "nope.pretty"), runner, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Error(t, w.Start(context.Background()))
	assert.False(t, w.IsWatching())
}

func TestHandleEventStats(t *testing.T) {
	cfg, runner := setup(t)

	w, err := New(cfg.InputDir, runner, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	mod := filepath.Join(cfg.InputDir, "R_0805.kicad_mod")

	w.handleEvent(fsnotify.Event{Name: mod, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: mod, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(cfg.InputDir, "README.md"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: mod, Op: fsnotify.Chmod})

	stats := w.GetStats()
	assert.Equal(t, 1, stats.FilesCreated)
	assert.Equal(t, 1, stats.FilesModified)
	assert.Equal(t, "modify", stats.LastEventType)
	assert.Equal(t, mod, stats.LastEventPath)

	// Deletion clears the pending entry.
	w.handleEvent(fsnotify.Event{Name: mod, Op: fsnotify.Remove})
	assert.Equal(t, 1, w.GetStats().FilesDeleted)
	w.mu.RLock()
	assert.Empty(t, w.debounceMap)
	w.mu.RUnlock()
}

func TestProcessSettled(t *testing.T) {
	cfg, runner := setup(t)

	mod := filepath.Join(cfg.InputDir, "R_0805.kicad_mod")
	require.NoError(t, os.WriteFile(mod, []byte(fixture), 0644))

	w, err := New(cfg.InputDir, runner, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	w.handleEvent(fsnotify.Event{Name: mod, Op: fsnotify.Write})
	time.Sleep(20 * time.Millisecond)
	w.processSettled()

	assert.Equal(t, 1, w.GetStats().Reprocessed)

	out := filepath.Join(cfg.OutputDirFor(cfg.Variants[0]), "R_0805-nofp.kicad_mod")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "F.CrtYd")
	assert.Contains(t, string(data), "fp_line")
}

func TestWatchEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("filesystem event timing")
	}

	cfg, runner := setup(t)

	w, err := New(cfg.InputDir, runner, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	mod := filepath.Join(cfg.InputDir, "R_0805.kicad_mod")
	require.NoError(t, os.WriteFile(mod, []byte(fixture), 0644))

	out := filepath.Join(cfg.OutputDirFor(cfg.Variants[0]), "R_0805-nofp.kicad_mod")
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond, "stripped output never appeared")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "F.CrtYd")
}
