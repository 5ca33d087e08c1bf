// Package pipeline drives the batch conversion: discover .kicad_mod files,
// strip each one per configured variant, and write the derivative library.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fpstrip/internal/config"
	"fpstrip/internal/footprint"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VariantSummary reports the outcome for one variant.
type VariantSummary struct {
	Suffix             string
	OutputDir          string
	Written            int
	Modified           int
	RemovedGeometry    int
	RemovedDesignators int
	Failures           int
}

// Summary reports the outcome of a full run.
type Summary struct {
	RunID    string
	Files    int
	Variants []VariantSummary
}

// Written returns the total number of output files written.
func (s Summary) Written() int {
	n := 0
	for _, v := range s.Variants {
		n += v.Written
	}
	return n
}

// RemovedGeometry returns the total courtyard elements removed.
func (s Summary) RemovedGeometry() int {
	n := 0
	for _, v := range s.Variants {
		n += v.RemovedGeometry
	}
	return n
}

// RemovedDesignators returns the total designator fields removed.
func (s Summary) RemovedDesignators() int {
	n := 0
	for _, v := range s.Variants {
		n += v.RemovedDesignators
	}
	return n
}

// Failures returns the total per-file failures.
func (s Summary) Failures() int {
	n := 0
	for _, v := range s.Variants {
		n += v.Failures
	}
	return n
}

// Runner executes the conversion for one Config.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
	strip  map[string]*footprint.Stripper // keyed by variant suffix
}

// NewRunner builds a Runner, compiling one stripper per variant.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	strippers := make(map[string]*footprint.Stripper, len(cfg.Variants))
	for _, v := range cfg.Variants {
		opts := footprint.Options{
			Elements:    cfg.Elements,
			Layers:      cfg.Layers,
			Designators: v.StripDesignators,
		}
		s, err := footprint.NewStripper(opts)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.Suffix, err)
		}
		strippers[v.Suffix] = s
	}

	return &Runner{cfg: cfg, logger: logger, strip: strippers}, nil
}

// Discover lists the .kicad_mod files in dir, sorted by name.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.kicad_mod"))
	if err != nil {
		return nil, fmt.Errorf("failed to list footprints: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every footprint in the input directory for every variant.
// Per-file failures are logged and counted; they never abort the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	log := r.logger.With(zap.String("run_id", summary.RunID))

	files, err := Discover(r.cfg.InputDir)
	if err != nil {
		return summary, err
	}
	summary.Files = len(files)
	if len(files) == 0 {
		log.Warn("No .kicad_mod files found", zap.String("dir", r.cfg.InputDir))
		return summary, nil
	}
	log.Info("Discovered footprints",
		zap.Int("count", len(files)),
		zap.String("dir", r.cfg.InputDir))

	for _, v := range r.cfg.Variants {
		vs := VariantSummary{Suffix: v.Suffix, OutputDir: r.cfg.OutputDirFor(v)}

		if err := os.MkdirAll(vs.OutputDir, 0755); err != nil {
			return summary, fmt.Errorf("failed to create output directory: %w", err)
		}
		log.Info("Processing variant",
			zap.String("suffix", v.Suffix),
			zap.String("output_dir", vs.OutputDir),
			zap.Bool("strip_courtyards", v.StripCourtyards),
			zap.Bool("strip_designators", v.StripDesignators))

		for _, path := range files {
			select {
			case <-ctx.Done():
				summary.Variants = append(summary.Variants, vs)
				return summary, ctx.Err()
			default:
			}

			res, err := r.ProcessFile(path, v)
			if err != nil {
				log.Error("Failed to process footprint",
					zap.String("file", path),
					zap.Error(err))
				vs.Failures++
				continue
			}
			vs.Written++
			if res.Modified() {
				vs.Modified++
			}
			vs.RemovedGeometry += res.RemovedGeometry
			vs.RemovedDesignators += res.RemovedDesignators
		}

		log.Info("Variant complete",
			zap.String("suffix", v.Suffix),
			zap.Int("written", vs.Written),
			zap.Int("modified", vs.Modified),
			zap.Int("failures", vs.Failures))
		summary.Variants = append(summary.Variants, vs)
	}

	return summary, nil
}

// ProcessFile converts a single footprint for one variant and writes the
// output file. Files without a courtyard are copied through unchanged for
// courtyard-only variants, matching the original workflow.
func (r *Runner) ProcessFile(path string, v config.VariantConfig) (footprint.Result, error) {
	stripper := r.strip[v.Suffix]
	if stripper == nil {
		return footprint.Result{}, fmt.Errorf("unknown variant: %s", v.Suffix)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return footprint.Result{}, fmt.Errorf("read: %w", err)
	}
	content := string(data)

	var res footprint.Result
	if v.StripCourtyards {
		if !stripper.HasCourtyard(content) {
			r.logger.Warn("No courtyard found", zap.String("file", filepath.Base(path)))
			res = footprint.Result{Content: content}
			if v.StripDesignators {
				res.Content, res.RemovedDesignators = stripper.StripDesignators(res.Content)
			}
		} else {
			res = stripper.Strip(content)
			r.logger.Debug("Removed courtyard elements",
				zap.String("file", filepath.Base(path)),
				zap.Int("removed", res.RemovedGeometry))
		}
	} else {
		res = footprint.Result{Content: content}
		res.Content, res.RemovedDesignators = stripper.StripDesignators(res.Content)
	}

	outPath := r.OutputPath(path, v)
	if err := os.WriteFile(outPath, []byte(res.Content), 0644); err != nil {
		return footprint.Result{}, fmt.Errorf("write: %w", err)
	}

	return res, nil
}

// OutputPath returns the output file path for an input footprint under a
// variant: "<stem><suffix>.kicad_mod" in the variant's output directory.
func (r *Runner) OutputPath(inputPath string, v config.VariantConfig) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), ".kicad_mod")
	return filepath.Join(r.cfg.OutputDirFor(v), stem+v.Suffix+".kicad_mod")
}

// Variants exposes the configured variants, for the watcher.
func (r *Runner) Variants() []config.VariantConfig {
	return r.cfg.Variants
}

// Inspect reports, per file, whether a courtyard is present and how many
// elements a strip would remove. It writes nothing.
func (r *Runner) Inspect() ([]FileReport, error) {
	files, err := Discover(r.cfg.InputDir)
	if err != nil {
		return nil, err
	}

	// Inspection uses a courtyard-only stripper regardless of variants.
	stripper, err := footprint.NewStripper(footprint.Options{
		Elements: r.cfg.Elements,
		Layers:   r.cfg.Layers,
	})
	if err != nil {
		return nil, err
	}

	reports := make([]FileReport, 0, len(files))
	for _, path := range files {
		report := FileReport{Name: filepath.Base(path)}
		data, err := os.ReadFile(path)
		if err != nil {
			report.Err = err
		} else {
			content := string(data)
			report.HasCourtyard = stripper.HasCourtyard(content)
			report.Removable = stripper.CountCourtyardElements(content)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// FileReport is one row of the check command output.
type FileReport struct {
	Name         string
	HasCourtyard bool
	Removable    int
	Err          error
}
