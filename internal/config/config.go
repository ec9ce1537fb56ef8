// Package config loads the optional YAML configuration of the pdfshield CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pdfshield/internal/fileutil"
	"github.com/alnah/go-pdfshield/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxPathLength bounds every path field.
const MaxPathLength = 4096

// Rasterization backends.
const (
	BackendPoppler = "poppler" // external pdftoppm
	BackendMuPDF   = "mupdf"   // in-process, cgo
)

// Export page sizing modes.
const (
	PageSizePixels   = "pixels"
	PageSizePhysical = "physical"
)

// AppDirName is the directory searched under the user config directory.
const AppDirName = "go-pdfshield"

// Config holds the pipeline configuration. Zero values mean "use the default".
type Config struct {
	Stages    StagesConfig    `yaml:"stages"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Raster    RasterConfig    `yaml:"raster"`
	Reencode  ReencodeConfig  `yaml:"reencode"`
	Export    ExportConfig    `yaml:"export"`
}

// StagesConfig locates the stage directories. Root provides the default
// numbered layout; the other fields override one directory each.
type StagesConfig struct {
	Root        string `yaml:"root"`
	Input       string `yaml:"input"`
	Watermarked string `yaml:"watermarked"`
	Rasterized  string `yaml:"rasterized"` // wiped on every run
	Export      string `yaml:"export"`
}

// WatermarkConfig defines the overlay asset and how it is drawn.
type WatermarkConfig struct {
	Image   string  `yaml:"image"`   // PNG or JPEG (default: <root>/watermark.png)
	Scale   float64 `yaml:"scale"`   // fraction of the asset's pixel size (default: 0.5)
	Opacity float64 `yaml:"opacity"` // 0.0 to 1.0 (default: 0.2)
}

// RasterConfig defines how watermarked PDFs become page images.
type RasterConfig struct {
	Backend string `yaml:"backend"` // "poppler" (default) or "mupdf"
	Tool    string `yaml:"tool"`    // pdftoppm executable name or path
	DPI     int    `yaml:"dpi"`     // 36-1200 (default: 150)
	Timeout string `yaml:"timeout"` // per document, e.g. "2m" (empty = no limit)
}

// ReencodeConfig defines the optional lossy pass before reassembly.
type ReencodeConfig struct {
	Enabled     bool `yaml:"enabled"`
	JPEGQuality int  `yaml:"jpegQuality"` // 1-100 (default: 35)
	PNGPass     bool `yaml:"pngPass"`
}

// ExportConfig defines the reassembled PDF.
type ExportConfig struct {
	PageSize string `yaml:"pageSize"` // "pixels" (default) or "physical"
}

// DefaultConfig returns an empty configuration: every value falls back to
// the library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate checks field lengths and enumerated values. Numeric ranges are
// checked once the configuration becomes pipeline settings.
func (c *Config) Validate() error {
	paths := []struct {
		name  string
		value string
	}{
		{"stages.root", c.Stages.Root},
		{"stages.input", c.Stages.Input},
		{"stages.watermarked", c.Stages.Watermarked},
		{"stages.rasterized", c.Stages.Rasterized},
		{"stages.export", c.Stages.Export},
		{"watermark.image", c.Watermark.Image},
		{"raster.tool", c.Raster.Tool},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Raster.Backend) {
	case "", BackendPoppler, BackendMuPDF:
	default:
		return fmt.Errorf("%w: raster.backend %q (must be %s or %s)", ErrInvalidValue, c.Raster.Backend, BackendPoppler, BackendMuPDF)
	}

	if _, err := c.Raster.TimeoutDuration(); err != nil {
		return err
	}

	switch strings.ToLower(c.Export.PageSize) {
	case "", PageSizePixels, PageSizePhysical:
	default:
		return fmt.Errorf("%w: export.pageSize %q (must be %s or %s)", ErrInvalidValue, c.Export.PageSize, PageSizePixels, PageSizePhysical)
	}

	return nil
}

// TimeoutDuration parses raster.timeout. Empty means no limit.
func (r RasterConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: raster.timeout %q: %v", ErrInvalidValue, r.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: raster.timeout %q must not be negative", ErrInvalidValue, r.Timeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFileStrict(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if errors.Is(err, yamlutil.ErrEmptyInput) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrConfigNotFound
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-pdfshield/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: triedPaths}
}
