package pdfshield

// Notes:
// - Fixtures are generated at test time: no binary files under testdata/
// - writeTestPDF builds image-only PDFs with pdfcpu, one page per size
// - fakeRasterizer and fakeRunner stand in for pdftoppm so the suite runs
//   without poppler installed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-pdfshield/internal/fileutil"
)

// ---------------------------------------------------------------------------
// Image and PDF fixtures
// ---------------------------------------------------------------------------

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 200, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	if err := os.WriteFile(path, jpegBytes(t, width, height), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// writeTestPDF writes a PDF with one page per size, each page carrying a
// full-bleed image of the same pixel size.
func writeTestPDF(t *testing.T, path string, sizes ...PageSize) {
	t.Helper()
	images := make([][]byte, len(sizes))
	for i, s := range sizes {
		images[i] = jpegBytes(t, int(s.Width), int(s.Height))
	}
	pdf, err := importFull(images)
	if err != nil {
		t.Fatalf("building test PDF: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readPageSizes(t *testing.T, path string) []PageSize {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	sizes, err := PageSizes(data)
	if err != nil {
		t.Fatalf("PageSizes(%s): %v", path, err)
	}
	return sizes
}

func assertPageSizes(t *testing.T, path string, want ...PageSize) {
	t.Helper()
	got := readPageSizes(t, path)
	if len(got) != len(want) {
		t.Fatalf("%s: got %d pages, want %d", filepath.Base(path), len(got), len(want))
	}
	for i := range want {
		if !nearly(got[i].Width, want[i].Width) || !nearly(got[i].Height, want[i].Height) {
			t.Errorf("%s page %d: got %.1fx%.1f, want %.1fx%.1f", filepath.Base(path), i+1,
				got[i].Width, got[i].Height, want[i].Width, want[i].Height)
		}
	}
}

func nearly(a, b float64) bool {
	return math.Abs(a-b) < 0.5
}

// a4 is an A4 page in points.
var a4 = PageSize{Width: 595, Height: 842}

// ---------------------------------------------------------------------------
// Pipeline root fixtures
// ---------------------------------------------------------------------------

// testRoot creates a pipeline root with an input stage holding the given
// PDFs (name -> page sizes) and a watermark asset of 200x100 pixels.
// Settings use 72 DPI so rasterized pages match their point size.
func testRoot(t *testing.T, pdfs map[string][]PageSize) Settings {
	t.Helper()
	root := t.TempDir()
	s := DefaultSettings(root)
	s.DPI = 72
	s.WatermarkPath = filepath.Join(root, "mark.png")

	if err := os.MkdirAll(s.Layout.Input, 0o750); err != nil {
		t.Fatalf("creating input dir: %v", err)
	}
	writePNG(t, s.WatermarkPath, 200, 100)
	for name, sizes := range pdfs {
		writeTestPDF(t, filepath.Join(s.Layout.Input, name), sizes...)
	}
	return s
}

// ---------------------------------------------------------------------------
// fakeRasterizer
// ---------------------------------------------------------------------------

// fakeRasterizer renders each page as a flat JPEG sized like the page at the
// requested DPI. Documents listed in fail get failErr instead, after leaving
// a partial page behind. With wait set, it blocks until ctx is done.
type fakeRasterizer struct {
	fail    map[string]bool
	failErr error
	wait    bool
	calls   []string
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdfPath, outputDir string, dpi int) ([]PageImage, error) {
	f.calls = append(f.calls, filepath.Base(pdfPath))
	if f.wait {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return nil, err
	}

	name := fileutil.TrimExt(filepath.Base(pdfPath))
	if f.fail[name] {
		partial := filepath.Join(outputDir, PageImageName(1))
		_ = os.WriteFile(partial, []byte("partial"), 0o644)
		err := f.failErr
		if err == nil {
			err = ErrRasterization
		}
		return nil, err
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, err
	}
	sizes, err := PageSizes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterization, err)
	}

	pages := make([]PageImage, len(sizes))
	for i, s := range sizes {
		w := int(math.Round(s.Width * float64(dpi) / 72))
		h := int(math.Round(s.Height * float64(dpi) / 72))
		var buf bytes.Buffer
		flat := image.NewGray(image.Rect(0, 0, w, h))
		if err := jpeg.Encode(&buf, flat, nil); err != nil {
			return nil, err
		}
		path := filepath.Join(outputDir, PageImageName(i+1))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		pages[i] = PageImage{Index: i + 1, Path: path, Width: w, Height: h}
	}
	return pages, nil
}

// ---------------------------------------------------------------------------
// fakeRunner
// ---------------------------------------------------------------------------

// fakeRunner imitates pdftoppm: on Run it writes one small JPEG per entry of
// files into the directory of the output prefix (the last argument).
type fakeRunner struct {
	files  []string
	stderr string
	err    error
	args   []string
	name   string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.name = name
	f.args = args
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if f.err != nil {
		return "", f.stderr, f.err
	}
	if len(args) == 0 {
		return "", "", errors.New("no arguments")
	}
	dir := filepath.Dir(args[len(args)-1])
	for i, file := range f.files {
		// Page width encodes the tool's page number so tests can check ordering.
		w := 10 + pageNumberOf(file)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, 20+i)), nil); err != nil {
			return "", "", err
		}
		if err := os.WriteFile(filepath.Join(dir, file), buf.Bytes(), 0o644); err != nil {
			return "", "", err
		}
	}
	return "", f.stderr, nil
}

func pageNumberOf(name string) int {
	n, ok := parseToolPage(name)
	if !ok {
		return 0
	}
	return n
}

func toolNames(format string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(format, i+1)
	}
	return out
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatalf("reading %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}
