package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pdfshield/internal/config"
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// stageFlags overrides stage directories.
type stageFlags struct {
	input       string
	watermarked string
	rasterized  string
	export      string
}

// watermarkFlags holds overlay flags.
type watermarkFlags struct {
	image   string
	scale   float64
	opacity float64
}

// rasterFlags holds rasterization flags.
type rasterFlags struct {
	backend string
	tool    string
	dpi     int
	timeout string
}

// reencodeFlags holds the optional re-encode pass flags.
type reencodeFlags struct {
	enabled bool
	quality int
	pngPass bool
}

// runFlags holds all flags for the run command.
type runFlags struct {
	common    commonFlags
	stages    stageFlags
	watermark watermarkFlags
	raster    rasterFlags
	reencode  reencodeFlags
	pageSize  string
	progress  bool
	report    string
}

// renameFlags holds flags for the rename command.
type renameFlags struct {
	common   commonFlags
	preset   string
	pattern  string
	template string
	dryRun   bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common    commonFlags
	stages    stageFlags
	watermark watermarkFlags
	raster    rasterFlags
	json      bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every stage")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addStageFlags adds stage directory flags to a FlagSet.
func addStageFlags(fs *flag.FlagSet, f *stageFlags) {
	fs.StringVarP(&f.input, "input", "i", "", "input PDF directory (default: <root>/1-pdfs)")
	fs.StringVar(&f.watermarked, "watermarked-dir", "", "watermarked PDF directory (default: <root>/2-watermarks)")
	fs.StringVar(&f.rasterized, "images-dir", "", "page image directory, wiped on every run (default: <root>/3-pdf-to-images)")
	fs.StringVarP(&f.export, "output", "o", "", "export directory (default: <root>/4-export)")
}

// addWatermarkFlags adds overlay flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkFlags) {
	fs.StringVarP(&f.image, "watermark", "w", "", "watermark PNG or JPEG (default: <root>/watermark.png)")
	fs.Float64Var(&f.scale, "wm-scale", 0, "watermark scale relative to its pixel size (default: 0.5)")
	fs.Float64Var(&f.opacity, "wm-opacity", 0, "watermark opacity, 0.0-1.0 (default: 0.2)")
}

// addRasterFlags adds rasterization flags to a FlagSet.
func addRasterFlags(fs *flag.FlagSet, f *rasterFlags) {
	fs.StringVar(&f.backend, "backend", "", "rasterizer: poppler or mupdf (default: poppler)")
	fs.StringVar(&f.tool, "tool", "", "pdftoppm executable (default: pdftoppm on PATH)")
	fs.IntVar(&f.dpi, "dpi", 0, "rasterization resolution, 36-1200 (default: 150)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document rasterization timeout (e.g., 30s, 2m)")
}

// addReencodeFlags adds re-encode flags to a FlagSet.
func addReencodeFlags(fs *flag.FlagSet, f *reencodeFlags) {
	fs.BoolVar(&f.enabled, "reencode", false, "recompress page images before reassembly")
	fs.IntVar(&f.quality, "quality", 0, "re-encode JPEG quality, 1-100 (default: 35)")
	fs.BoolVar(&f.pngPass, "png", false, "follow the JPEG pass with a max-compression PNG pass")
}

// newFlagSet creates a FlagSet that reports errors to the caller only.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseFlagSet parses args, printing usage on -h and wrapping parse errors in ErrUsage.
func parseFlagSet(fs *flag.FlagSet, args []string, w io.Writer, usage func(io.Writer)) error {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		usage(w)
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v (see 'pdfshield help %s')", ErrUsage, err, fs.Name())
	}
	return nil
}

// parseRunFlags parses run command flags and returns positional args.
func parseRunFlags(args []string, w io.Writer) (*runFlags, []string, error) {
	fs := newFlagSet("run")
	f := &runFlags{}

	addCommonFlags(fs, &f.common)
	addStageFlags(fs, &f.stages)
	addWatermarkFlags(fs, &f.watermark)
	addRasterFlags(fs, &f.raster)
	addReencodeFlags(fs, &f.reencode)
	fs.StringVar(&f.pageSize, "page-size", "", "export page size: pixels or physical (default: pixels)")
	fs.BoolVar(&f.progress, "progress", false, "show a progress bar")
	fs.StringVar(&f.report, "report", "", "write a JSON batch report to this file")

	if err := parseFlagSet(fs, args, w, printRunUsage); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRenameFlags parses rename command flags and returns positional args.
func parseRenameFlags(args []string, w io.Writer) (*renameFlags, []string, error) {
	fs := newFlagSet("rename")
	f := &renameFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.preset, "preset", "p", "", "built-in rule: invoices or expenses")
	fs.StringVar(&f.pattern, "pattern", "", "regular expression with capture groups")
	fs.StringVar(&f.template, "template", "", "new name, with $1 or ${name} for groups")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "print the renames without performing them")

	if err := parseFlagSet(fs, args, w, printRenameUsage); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags and returns positional args.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, []string, error) {
	fs := newFlagSet("doctor")
	f := &doctorFlags{}

	addCommonFlags(fs, &f.common)
	addStageFlags(fs, &f.stages)
	addWatermarkFlags(fs, &f.watermark)
	addRasterFlags(fs, &f.raster)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")

	if err := parseFlagSet(fs, args, w, printDoctorUsage); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// loadConfig loads the --config file, or returns an empty config.
func loadConfig(f commonFlags) (*config.Config, error) {
	if f.config == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(f.config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w%s", err, configHint(err))
	}
	return cfg, nil
}

// mergeStageFlags merges stage and root overrides into cfg. CLI values win.
func mergeStageFlags(root string, f stageFlags, cfg *config.Config) {
	if root != "" {
		cfg.Stages.Root = root
	}
	if f.input != "" {
		cfg.Stages.Input = f.input
	}
	if f.watermarked != "" {
		cfg.Stages.Watermarked = f.watermarked
	}
	if f.rasterized != "" {
		cfg.Stages.Rasterized = f.rasterized
	}
	if f.export != "" {
		cfg.Stages.Export = f.export
	}
}

// mergeWatermarkFlags merges overlay flags into cfg. CLI values win.
func mergeWatermarkFlags(f watermarkFlags, cfg *config.Config) {
	if f.image != "" {
		cfg.Watermark.Image = f.image
	}
	if f.scale != 0 {
		cfg.Watermark.Scale = f.scale
	}
	if f.opacity != 0 {
		cfg.Watermark.Opacity = f.opacity
	}
}

// mergeRasterFlags merges rasterization flags into cfg. CLI values win.
func mergeRasterFlags(f rasterFlags, cfg *config.Config) {
	if f.backend != "" {
		cfg.Raster.Backend = f.backend
	}
	if f.tool != "" {
		cfg.Raster.Tool = f.tool
	}
	if f.dpi != 0 {
		cfg.Raster.DPI = f.dpi
	}
	if f.timeout != "" {
		cfg.Raster.Timeout = f.timeout
	}
}

// mergeRunFlags merges every run flag into cfg. CLI values win; boolean flags
// can only switch a feature on.
func mergeRunFlags(root string, f *runFlags, cfg *config.Config) {
	mergeStageFlags(root, f.stages, cfg)
	mergeWatermarkFlags(f.watermark, cfg)
	mergeRasterFlags(f.raster, cfg)

	if f.reencode.enabled {
		cfg.Reencode.Enabled = true
	}
	if f.reencode.quality != 0 {
		cfg.Reencode.JPEGQuality = f.reencode.quality
	}
	if f.reencode.pngPass {
		cfg.Reencode.PNGPass = true
	}
	if f.pageSize != "" {
		cfg.Export.PageSize = f.pageSize
	}
}

// rootArg returns the optional positional root directory.
func rootArg(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", nil
	case 1:
		return positional[0], nil
	}
	return "", fmt.Errorf("%w: expected at most one root directory, got %d arguments", ErrUsage, len(positional))
}
