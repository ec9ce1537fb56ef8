package pdfshield

import (
	"fmt"
	"path/filepath"
	"time"
)

// DPI bounds for rasterization.
const (
	MinDPI     = 36
	MaxDPI     = 1200
	DefaultDPI = 150
)

// JPEG quality bounds for the re-encode pass.
const (
	MinJPEGQuality     = 1
	MaxJPEGQuality     = 100
	DefaultJPEGQuality = 35
)

// Watermark defaults: half the asset's natural size at 20% opacity.
const (
	DefaultWatermarkScale   = 0.5
	DefaultWatermarkOpacity = 0.2
	DefaultWatermarkFile    = "watermark.png"
)

// PageSizing selects how reassembled page sizes are derived from image pixels.
type PageSizing string

const (
	// SizingPixels maps one image pixel to one PDF point.
	SizingPixels PageSizing = "pixels"
	// SizingPhysical divides pixel sizes by the rasterization DPI (x72),
	// recovering the source page's physical size.
	SizingPhysical PageSizing = "physical"
)

// WatermarkStyle configures how the overlay is drawn on each page.
type WatermarkStyle struct {
	Scale   float64 // fraction of the asset's natural pixel size
	Opacity float64 // 0 < opacity <= 1
}

// DefaultWatermarkStyle returns the standard overlay style.
func DefaultWatermarkStyle() WatermarkStyle {
	return WatermarkStyle{Scale: DefaultWatermarkScale, Opacity: DefaultWatermarkOpacity}
}

// Validate checks scale and opacity ranges.
func (w WatermarkStyle) Validate() error {
	if w.Scale <= 0 || w.Scale > 10 {
		return fmt.Errorf("%w: %.2f (must be > 0 and <= 10)", ErrInvalidScale, w.Scale)
	}
	if w.Opacity <= 0 || w.Opacity > 1 {
		return fmt.Errorf("%w: %.2f (must be > 0 and <= 1)", ErrInvalidOpacity, w.Opacity)
	}
	return nil
}

// ReencodeSettings configures the optional lossy pass before reassembly.
type ReencodeSettings struct {
	Enabled     bool
	JPEGQuality int
	PNGPass     bool // follow the JPEG pass with a max-compression PNG encode
}

// Settings is the explicit configuration shared by every pipeline component.
type Settings struct {
	Layout           Layout
	WatermarkPath    string
	Watermark        WatermarkStyle
	DPI              int
	RasterizeTimeout time.Duration // 0 = no limit
	Reencode         ReencodeSettings
	Sizing           PageSizing
}

// DefaultSettings returns settings for the standard layout under root, with the
// watermark asset expected at root/watermark.png.
func DefaultSettings(root string) Settings {
	return Settings{
		Layout:        DefaultLayout(root),
		WatermarkPath: filepath.Join(root, DefaultWatermarkFile),
		Watermark:     DefaultWatermarkStyle(),
		DPI:           DefaultDPI,
		Reencode:      ReencodeSettings{JPEGQuality: DefaultJPEGQuality},
		Sizing:        SizingPixels,
	}
}

// Validate checks every field. The watermark file itself is checked when the
// compositor loads it, so a missing asset fails per document, not here.
func (s Settings) Validate() error {
	if err := s.Layout.Validate(); err != nil {
		return err
	}
	if err := s.Watermark.Validate(); err != nil {
		return err
	}
	if err := validateDPI(s.DPI); err != nil {
		return err
	}
	if s.RasterizeTimeout < 0 {
		return fmt.Errorf("rasterize timeout must not be negative, got %v", s.RasterizeTimeout)
	}
	if s.Reencode.Enabled {
		if err := validateQuality(s.Reencode.JPEGQuality); err != nil {
			return err
		}
	}
	switch s.Sizing {
	case SizingPixels, SizingPhysical:
	default:
		return fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidSizing, s.Sizing, SizingPixels, SizingPhysical)
	}
	return nil
}

func validateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDPI, dpi, MinDPI, MaxDPI)
	}
	return nil
}

func validateQuality(q int) error {
	if q < MinJPEGQuality || q > MaxJPEGQuality {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidQuality, q, MinJPEGQuality, MaxJPEGQuality)
	}
	return nil
}
