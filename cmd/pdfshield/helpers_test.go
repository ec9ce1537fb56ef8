package main

// Notes:
// - PDF fixtures are built at test time through pdfshield's own reassembler.
// - fakeRasterizer replaces pdftoppm through Environment.Rasterizer so the
//   command tests run without poppler installed.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pdfshield "github.com/alnah/go-pdfshield"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func grayImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	return img
}

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, grayImage(width, height), nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func writeWatermark(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 60))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 200, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// writeTestPDF writes an image-only PDF of the given page count.
func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= pages; i++ {
		writeJPEG(t, filepath.Join(dir, pdfshield.PageImageName(i)), 200, 280)
	}
	r, err := pdfshield.NewReassembler(pdfshield.DefaultSettings(dir))
	if err != nil {
		t.Fatalf("NewReassembler() error: %v", err)
	}
	if _, err := r.Reassemble(context.Background(), dir, path); err != nil {
		t.Fatalf("building test PDF: %v", err)
	}
}

// setupRoot creates a pipeline root holding a watermark and one input PDF per
// entry of docs (file name to page count).
func setupRoot(t *testing.T, docs map[string]int) string {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, pdfshield.DefaultInputDir)
	if err := os.MkdirAll(input, 0o750); err != nil {
		t.Fatal(err)
	}
	for name, pages := range docs {
		writeTestPDF(t, filepath.Join(input, name), pages)
	}
	writeWatermark(t, filepath.Join(root, pdfshield.DefaultWatermarkFile))
	return root
}

// pageCount reads the page count of a PDF on disk.
func pageCount(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	n, err := pdfshield.PageCount(data)
	if err != nil {
		t.Fatalf("PageCount(%s) error: %v", path, err)
	}
	return n
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeRasterizer renders each page as a small gray JPEG. Documents listed in
// fail return the mapped error.
type fakeRasterizer struct {
	fail map[string]error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, pdfPath, outputDir string, _ int) ([]pdfshield.PageImage, error) {
	id := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	if err, ok := f.fail[id]; ok {
		return nil, err
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, err
	}
	n, err := pdfshield.PageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdfshield.ErrRasterization, err)
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, err
	}

	pages := make([]pdfshield.PageImage, 0, n)
	for i := 1; i <= n; i++ {
		path := filepath.Join(outputDir, pdfshield.PageImageName(i))
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, grayImage(100, 140), nil); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		pages = append(pages, pdfshield.PageImage{Index: i, Path: path, Width: 100, Height: 140})
	}
	return pages, nil
}

// testEnv returns an environment writing to buffers, with a fixed clock, a
// fake rasterizer and a LookPath that finds nothing.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env := &Environment{
		Now:        func() time.Time { return fixed },
		Stdout:     stdout,
		Stderr:     stderr,
		LookPath:   func(string) (string, error) { return "", errors.New("not found") },
		Rasterizer: &fakeRasterizer{},
	}
	return env, stdout, stderr
}
