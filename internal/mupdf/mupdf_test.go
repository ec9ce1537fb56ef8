package mupdf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	pdfshield "github.com/alnah/go-pdfshield"
)

func TestNew(t *testing.T) {
	t.Parallel()

	if got := New().Quality; got != DefaultJPEGQuality {
		t.Errorf("Quality = %d, want %d", got, DefaultJPEGQuality)
	}
}

func TestRasterize_InvalidDPI(t *testing.T) {
	t.Parallel()

	for _, dpi := range []int{0, pdfshield.MinDPI - 1, pdfshield.MaxDPI + 1} {
		_, err := New().Rasterize(context.Background(), "doc.pdf", filepath.Join(t.TempDir(), "out"), dpi)
		if !errors.Is(err, pdfshield.ErrInvalidDPI) {
			t.Errorf("Rasterize(dpi=%d) = %v, want ErrInvalidDPI", dpi, err)
		}
	}
}

func TestRasterize_MissingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := New().Rasterize(context.Background(), filepath.Join(dir, "absent.pdf"), filepath.Join(dir, "out"), 72)
	if !errors.Is(err, pdfshield.ErrRasterization) {
		t.Errorf("Rasterize() = %v, want ErrRasterization", err)
	}
}
