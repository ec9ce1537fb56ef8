package pdfshield

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-pdfshield/internal/fileutil"
)

// pageImagePattern matches canonical page image names: page_<n>.jpg.
var pageImagePattern = regexp.MustCompile(`(?i)^` + PageImagePrefix + `(\d+)\` + PageImageExt + `$`)

// Reassembler builds a PDF with one full-bleed page per page image.
type Reassembler struct {
	Reencoder *Reencoder // nil = embed the rasterizer's JPEGs unchanged
	Sizing    PageSizing
	DPI       int // rasterization DPI, used by SizingPhysical
}

// NewReassembler builds a Reassembler from settings.
func NewReassembler(s Settings) (*Reassembler, error) {
	re, err := NewReencoder(s.Reencode)
	if err != nil {
		return nil, err
	}
	return &Reassembler{Reencoder: re, Sizing: s.Sizing, DPI: s.DPI}, nil
}

// ListPageImages returns the page images in dir ordered by their page number,
// parsed from the file name rather than sorted as strings.
func ListPageImages(dir string) ([]PageImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoImages, dir)
		}
		return nil, fmt.Errorf("listing page images: %w", err)
	}

	var pages []PageImage
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := pageImagePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		pages = append(pages, PageImage{Index: n, Path: filepath.Join(dir, e.Name())})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages, nil
}

// Reassemble writes outputPath with one page per image of imagesDir, in page
// order, and returns the page count. Source images are not modified. The
// output appears atomically; a failure leaves no partial file.
func (r *Reassembler) Reassemble(ctx context.Context, imagesDir, outputPath string) (int, error) {
	pages, err := ListPageImages(imagesDir)
	if err != nil {
		return 0, err
	}

	images := make([][]byte, len(pages))
	sizes := make([]PageSize, len(pages))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		w, h, err := imageSize(p.Path)
		if err != nil {
			return 0, fmt.Errorf("%w: page %d: %v", ErrReassembly, p.Index, err)
		}
		sizes[i] = r.pageSize(w, h)

		if images[i], err = r.pageData(p.Path); err != nil {
			return 0, err
		}
	}

	var pdf []byte
	if r.Sizing == SizingPhysical {
		pdf, err = importScaled(images, sizes)
	} else {
		pdf, err = importFull(images)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReassembly, err)
	}

	if err := fileutil.WriteFileAtomic(outputPath, pdf); err != nil {
		return 0, fmt.Errorf("%w: writing %s: %v", ErrReassembly, outputPath, err)
	}
	return len(pages), nil
}

// pageData returns the bytes to embed for one page.
func (r *Reassembler) pageData(path string) ([]byte, error) {
	if r.Reencoder != nil {
		return r.Reencoder.Reencode(path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- page image inside the rasterized stage
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReassembly, err)
	}
	return data, nil
}

// pageSize maps image pixels to page points according to the sizing mode.
func (r *Reassembler) pageSize(width, height int) PageSize {
	if r.Sizing == SizingPhysical && r.DPI > 0 {
		return PageSize{
			Width:  float64(width) * 72 / float64(r.DPI),
			Height: float64(height) * 72 / float64(r.DPI),
		}
	}
	return PageSize{Width: float64(width), Height: float64(height)}
}

// importFull builds a PDF in one pass where every page takes its image's
// pixel size as its point size.
func importFull(images [][]byte) ([]byte, error) {
	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full

	readers := make([]io.Reader, len(images))
	for i, img := range images {
		readers[i] = bytes.NewReader(img)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, pdfConfig()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// importScaled appends pages one at a time, each sized to sizes[i] with its
// image scaled to fill it.
func importScaled(images [][]byte, sizes []PageSize) ([]byte, error) {
	var pdf []byte
	for i, img := range images {
		imp := pdfcpu.DefaultImportConfig()
		imp.PageDim = sizes[i].dim()
		imp.UserDim = true
		imp.Pos = types.Center
		imp.Scale = 1
		imp.ScaleAbs = false

		// rs must stay an untyped nil for the first page so pdfcpu creates a new document.
		var rs io.ReadSeeker
		if pdf != nil {
			rs = bytes.NewReader(pdf)
		}

		var out bytes.Buffer
		if err := api.ImportImages(rs, &out, []io.Reader{bytes.NewReader(img)}, imp, pdfConfig()); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pdf = out.Bytes()
	}
	return pdf, nil
}
