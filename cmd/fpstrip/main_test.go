package main

import (
	"os"
	"path/filepath"
	"testing"

	"fpstrip/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fpstrip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_dir: FromFile.pretty\n"), 0644))

	t.Run("config file", func(t *testing.T) {
		configPath = path
		inputDir = ""
		t.Cleanup(func() { configPath = ""; inputDir = "" })

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "FromFile.pretty", cfg.InputDir)
	})

	t.Run("--input beats config file", func(t *testing.T) {
		configPath = path
		inputDir = "FromFlag.pretty"
		t.Cleanup(func() { configPath = ""; inputDir = "" })

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "FromFlag.pretty", cfg.InputDir)
	})
}

func TestApplyStripFlags(t *testing.T) {
	reset := func() {
		stripDesignators = false
		stripSuffix = ""
		stripOutputDir = ""
	}

	t.Run("designators applies to all variants", func(t *testing.T) {
		defer reset()
		stripDesignators = true

		cfg := config.DefaultConfig()
		cfg.Variants = append(cfg.Variants, config.VariantConfig{Suffix: "-x", StripCourtyards: true})
		applyStripFlags(cfg)

		for _, v := range cfg.Variants {
			assert.True(t, v.StripDesignators)
		}
	})

	t.Run("suffix and output only for single variant", func(t *testing.T) {
		defer reset()
		stripSuffix = "-bare"
		stripOutputDir = "out.pretty"

		cfg := config.DefaultConfig()
		applyStripFlags(cfg)
		assert.Equal(t, "-bare", cfg.Variants[0].Suffix)
		assert.Equal(t, "out.pretty", cfg.Variants[0].OutputDir)

		multi := config.DefaultConfig()
		multi.Variants = append(multi.Variants, config.VariantConfig{Suffix: "-y", StripCourtyards: true})
		applyStripFlags(multi)
		assert.Equal(t, "-nofp", multi.Variants[0].Suffix)
		assert.Empty(t, multi.Variants[0].OutputDir)
	})
}

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"strip", "check", "watch", "version"} {
		assert.True(t, names[want], "missing command: %s", want)
	}

	f := rootCmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, f, "missing persistent flag: timeout")
	assert.Equal(t, "5m0s", f.DefValue)
}

func TestLoggerConfig(t *testing.T) {
	t.Run("level and format from config", func(t *testing.T) {
		zc := loggerConfig(config.LoggingConfig{Level: "warn", Format: "json"}, false)
		assert.Equal(t, "json", zc.Encoding)
		assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())
	})

	t.Run("text maps to console", func(t *testing.T) {
		zc := loggerConfig(config.LoggingConfig{Level: "info", Format: "text"}, false)
		assert.Equal(t, "console", zc.Encoding)
		assert.Equal(t, zapcore.InfoLevel, zc.Level.Level())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		zc := loggerConfig(config.LoggingConfig{Level: "chatty"}, false)
		assert.Equal(t, zapcore.InfoLevel, zc.Level.Level())
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		zc := loggerConfig(config.LoggingConfig{Level: "error"}, true)
		assert.Equal(t, zapcore.DebugLevel, zc.Level.Level())
	})

	t.Run("defaults build a working logger", func(t *testing.T) {
		logger, err := loggerConfig(config.DefaultConfig().Logging, false).Build()
		require.NoError(t, err)
		defer logger.Sync()
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}
