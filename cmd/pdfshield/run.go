package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdfshield "github.com/alnah/go-pdfshield"
	"github.com/alnah/go-pdfshield/internal/config"
	"github.com/alnah/go-pdfshield/internal/hints"
	"github.com/alnah/go-pdfshield/internal/mupdf"
)

// BatchError reports the documents of a run that did not reach the export
// stage. It unwraps to every document's cause.
type BatchError struct {
	Failed int
	Errs   []error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d document(s) failed", e.Failed)
}

func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// runPipelineCmd executes the run command.
func runPipelineCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRunFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	root, err := rootArg(positional)
	if err != nil {
		return err
	}
	setColor(flags.common.noColor)

	cfg, err := loadConfig(flags.common)
	if err != nil {
		return err
	}
	mergeRunFlags(root, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	settings, err := buildSettings(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose)
	opts := []pdfshield.Option{
		pdfshield.WithLogger(logger),
		pdfshield.WithClock(env.Now),
		pdfshield.WithRasterizer(newRasterizer(cfg, env)),
	}

	var bar *progressBar
	if flags.progress && !flags.common.quiet {
		// Progress max is only known after discovery; count input PDFs up front.
		docs, discoverErr := settings.Layout.Discover()
		if discoverErr == nil && len(docs) > 0 {
			bar = newProgressBar(env.Stderr, len(docs))
			opts = append(opts, pdfshield.WithProgress(bar.observe))
		}
	}

	p, err := pdfshield.NewPipeline(settings, opts...)
	if err != nil {
		return err
	}

	report, runErr := p.Run(ctx)
	if bar != nil {
		bar.finish()
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return runErr
	}

	if !flags.common.quiet {
		printReport(env.Stdout, env.Stderr, report)
	} else {
		printFailures(env.Stderr, report)
	}

	if flags.report != "" {
		if err := writeReport(flags.report, report); err != nil {
			return err
		}
	}

	return batchErr(report)
}

// batchErr returns a *BatchError when any document failed, nil otherwise.
func batchErr(report *pdfshield.BatchReport) error {
	failures := report.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f.Err)
	}
	return &BatchError{Failed: len(failures), Errs: errs}
}

// buildSettings converts the merged configuration into pipeline settings.
// Zero config values keep the library defaults.
func buildSettings(cfg *config.Config) (pdfshield.Settings, error) {
	root := cfg.Stages.Root
	if root == "" {
		root = "."
	}
	s := pdfshield.DefaultSettings(root)

	if cfg.Stages.Input != "" {
		s.Layout.Input = cfg.Stages.Input
	}
	if cfg.Stages.Watermarked != "" {
		s.Layout.Watermarked = cfg.Stages.Watermarked
	}
	if cfg.Stages.Rasterized != "" {
		s.Layout.Rasterized = cfg.Stages.Rasterized
	}
	if cfg.Stages.Export != "" {
		s.Layout.Export = cfg.Stages.Export
	}

	if cfg.Watermark.Image != "" {
		s.WatermarkPath = cfg.Watermark.Image
	}
	if cfg.Watermark.Scale != 0 {
		s.Watermark.Scale = cfg.Watermark.Scale
	}
	if cfg.Watermark.Opacity != 0 {
		s.Watermark.Opacity = cfg.Watermark.Opacity
	}

	if cfg.Raster.DPI != 0 {
		s.DPI = cfg.Raster.DPI
	}
	timeout, err := cfg.Raster.TimeoutDuration()
	if err != nil {
		return pdfshield.Settings{}, err
	}
	s.RasterizeTimeout = timeout

	s.Reencode.Enabled = cfg.Reencode.Enabled
	s.Reencode.PNGPass = cfg.Reencode.PNGPass
	if cfg.Reencode.JPEGQuality != 0 {
		s.Reencode.JPEGQuality = cfg.Reencode.JPEGQuality
	}

	if strings.EqualFold(cfg.Export.PageSize, config.PageSizePhysical) {
		s.Sizing = pdfshield.SizingPhysical
	}

	if err := s.Validate(); err != nil {
		return pdfshield.Settings{}, err
	}
	return s, nil
}

// newRasterizer selects the rasterization backend. An environment override wins.
func newRasterizer(cfg *config.Config, env *Environment) pdfshield.Rasterizer {
	if env.Rasterizer != nil {
		return env.Rasterizer
	}
	if strings.EqualFold(cfg.Raster.Backend, config.BackendMuPDF) {
		return mupdf.New()
	}
	return pdfshield.NewPopplerRasterizer(toolName(cfg))
}

// toolName returns the configured pdftoppm executable.
func toolName(cfg *config.Config) string {
	if cfg.Raster.Tool != "" {
		return cfg.Raster.Tool
	}
	return pdfshield.DefaultRasterTool
}

// configHint returns an actionable hint for config loading errors.
func configHint(err error) string {
	var nf *config.NotFoundError
	if errors.As(err, &nf) {
		return hints.ForConfigNotFound(nf.Tried)
	}
	return ""
}

// displayPath shortens paths under the working directory for terminal output.
func displayPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
