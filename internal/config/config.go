// Package config loads fpstrip configuration from YAML with environment
// overrides. Missing config file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config filename looked up in the working
// directory when --config is not given.
const DefaultConfigFile = "fpstrip.yaml"

// Config holds all fpstrip configuration.
type Config struct {
	// InputDir is the .pretty library directory holding *.kicad_mod files.
	InputDir string `yaml:"input_dir"`

	// Layers are the layer tag names whose elements get removed.
	Layers []string `yaml:"layers"`

	// Elements are the geometric element keywords subject to removal.
	Elements []string `yaml:"elements"`

	// Variants describe the derivative libraries to produce.
	Variants []VariantConfig `yaml:"variants"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// VariantConfig describes one derivative output library.
type VariantConfig struct {
	// Suffix is appended to output filenames and, when OutputDir is empty,
	// to the derived output directory name.
	Suffix string `yaml:"suffix"`

	// OutputDir overrides the derived output directory.
	OutputDir string `yaml:"output_dir"`

	StripCourtyards  bool `yaml:"strip_courtyards"`
	StripDesignators bool `yaml:"strip_designators"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration. It mirrors the classic
// APRLPrints workflow: one -nofp variant with courtyard stripping only.
func DefaultConfig() *Config {
	return &Config{
		InputDir: "APRLPrints.pretty",
		Layers:   []string{"F.CrtYd", "B.CrtYd"},
		Elements: []string{"fp_rect", "fp_line", "fp_poly", "fp_circle", "fp_arc"},
		Variants: []VariantConfig{
			{
				Suffix:          "-nofp",
				StripCourtyards: true,
			},
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("FPSTRIP_INPUT_DIR"); dir != "" {
		c.InputDir = dir
	}
	if d := os.Getenv("FPSTRIP_DEBOUNCE"); d != "" {
		c.Watch.Debounce = d
	}
	if lvl := os.Getenv("FPSTRIP_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// GetDebounce returns the watch debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// OutputDirFor returns the output directory for a variant, deriving
// "<input-base><suffix>.pretty" when none is configured.
func (c *Config) OutputDirFor(v VariantConfig) string {
	if v.OutputDir != "" {
		return v.OutputDir
	}
	base := strings.TrimSuffix(filepath.Base(c.InputDir), ".pretty")
	return filepath.Join(filepath.Dir(c.InputDir), base+v.Suffix+".pretty")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir not configured")
	}
	if len(c.Layers) == 0 {
		return fmt.Errorf("layers list is empty")
	}
	if len(c.Elements) == 0 {
		return fmt.Errorf("elements list is empty")
	}
	if len(c.Variants) == 0 {
		return fmt.Errorf("no variants configured")
	}

	seen := make(map[string]bool)
	for i, v := range c.Variants {
		if v.Suffix == "" {
			return fmt.Errorf("variant %d has an empty suffix", i)
		}
		if seen[v.Suffix] {
			return fmt.Errorf("duplicate variant suffix: %s", v.Suffix)
		}
		seen[v.Suffix] = true
		if !v.StripCourtyards && !v.StripDesignators {
			return fmt.Errorf("variant %s strips nothing", v.Suffix)
		}
	}

	return nil
}
