// Package mupdf rasterizes PDFs in-process with MuPDF (cgo), for hosts
// where poppler's pdftoppm is not installed.
package mupdf

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	pdfshield "github.com/alnah/go-pdfshield"
	"github.com/alnah/go-pdfshield/internal/fileutil"
)

// DefaultJPEGQuality matches pdftoppm's default.
const DefaultJPEGQuality = 75

// Rasterizer implements pdfshield.Rasterizer with go-fitz.
type Rasterizer struct {
	Quality int // JPEG quality, 1-100 (0 = DefaultJPEGQuality)
}

var _ pdfshield.Rasterizer = (*Rasterizer)(nil)

// New returns a Rasterizer with default quality.
func New() *Rasterizer {
	return &Rasterizer{Quality: DefaultJPEGQuality}
}

// Rasterize renders every page at dpi into outputDir as page_<n>.jpg.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, outputDir string, dpi int) ([]pdfshield.PageImage, error) {
	if dpi < pdfshield.MinDPI || dpi > pdfshield.MaxDPI {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)", pdfshield.ErrInvalidDPI, dpi, pdfshield.MinDPI, pdfshield.MaxDPI)
	}
	if err := os.MkdirAll(outputDir, fileutil.DirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", pdfshield.ErrRasterization, pdfPath, err)
	}
	defer func() { _ = doc.Close() }()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", pdfshield.ErrEmptyOutput, pdfPath)
	}

	quality := r.Quality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}

	pages := make([]pdfshield.PageImage, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", pdfshield.ErrRasterization, err)
		}

		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", pdfshield.ErrRasterization, i+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("%w: encoding page %d: %v", pdfshield.ErrRasterization, i+1, err)
		}

		path := filepath.Join(outputDir, pdfshield.PageImageName(i+1))
		if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("writing page %d: %w", i+1, err)
		}

		b := img.Bounds()
		pages = append(pages, pdfshield.PageImage{Index: i + 1, Path: path, Width: b.Dx(), Height: b.Dy()})
	}
	return pages, nil
}
