package pdfshield

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder for asset validation
	_ "image/png"  // register PNG decoder for asset validation
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-pdfshield/internal/hints"
)

// Compositor stamps one raster overlay, centered and translucent, on every
// page of a PDF. The asset is read and validated once, at construction.
type Compositor struct {
	asset  []byte
	width  int
	height int
	style  WatermarkStyle
}

// NewCompositor loads the watermark asset. It fails with ErrMissingAsset when
// the file does not exist and ErrInvalidAsset when it is not a PNG or JPEG.
func NewCompositor(assetPath string, style WatermarkStyle) (*Compositor, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(assetPath) // #nosec G304 -- asset path is operator-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s%s", ErrMissingAsset, assetPath, hints.ForMissingAsset(assetPath))
		}
		return nil, fmt.Errorf("reading watermark asset: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAsset, assetPath, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidAsset, assetPath, format)
	}

	return &Compositor{asset: data, width: cfg.Width, height: cfg.Height, style: style}, nil
}

// AssetSize returns the overlay's natural pixel dimensions.
func (c *Compositor) AssetSize() (width, height int) {
	return c.width, c.height
}

// PlacedSize returns the overlay's drawn size in points on every page.
func (c *Compositor) PlacedSize() (width, height float64) {
	return float64(c.width) * c.style.Scale, float64(c.height) * c.style.Scale
}

// description renders the stamp parameters in pdfcpu's watermark syntax:
// absolute scale relative to the image, centered, no rotation.
func (c *Compositor) description() string {
	return fmt.Sprintf("scalefactor:%.4f abs, opacity:%.4f, rotation:0, position:c, offset:0 0",
		c.style.Scale, c.style.Opacity)
}

// Composite returns the bytes of inputPath with the overlay drawn on top of
// every page. Page count and page sizes are unchanged.
func (c *Compositor) Composite(ctx context.Context, inputPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(inputPath) // #nosec G304 -- discovered input path
	if err != nil {
		return nil, fmt.Errorf("reading input PDF: %w", err)
	}

	// A fresh watermark per document: pdfcpu caches object references
	// from the document it was applied to.
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(c.asset), c.description(), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: building stamp: %v", ErrComposite, err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(src), &out, nil, wm, pdfConfig()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComposite, err)
	}
	return out.Bytes(), nil
}
