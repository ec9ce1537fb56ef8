package pdfshield

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pdfshield/internal/fileutil"
	"github.com/alnah/go-pdfshield/internal/hints"
)

// Default stage directory names under a pipeline root.
const (
	DefaultInputDir       = "1-pdfs"
	DefaultWatermarkedDir = "2-watermarks"
	DefaultRasterizedDir  = "3-pdf-to-images"
	DefaultExportDir      = "4-export"
)

// Naming conventions at the filesystem boundary.
const (
	ImagesDirSuffix = "_images"
	PageImagePrefix = "page_"
	PageImageExt    = ".jpg"
	pdfExt          = ".pdf"
)

// Layout holds the four stage roots.
type Layout struct {
	Input       string
	Watermarked string
	Rasterized  string // wiped at the start of every run
	Export      string
}

// DefaultLayout returns the numbered stage directories under root.
func DefaultLayout(root string) Layout {
	return Layout{
		Input:       filepath.Join(root, DefaultInputDir),
		Watermarked: filepath.Join(root, DefaultWatermarkedDir),
		Rasterized:  filepath.Join(root, DefaultRasterizedDir),
		Export:      filepath.Join(root, DefaultExportDir),
	}
}

// Validate checks that all roots are set and that the rasterized root, which
// is wiped on every run, neither equals nor contains another stage root.
func (l Layout) Validate() error {
	roots := map[string]string{
		"input":       l.Input,
		"watermarked": l.Watermarked,
		"rasterized":  l.Rasterized,
		"export":      l.Export,
	}
	for name, dir := range roots {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%w: %s directory is empty", ErrInvalidLayout, name)
		}
	}

	raster := filepath.Clean(l.Rasterized)
	for _, name := range []string{"input", "watermarked", "export"} {
		other := filepath.Clean(roots[name])
		if other == raster || isWithin(raster, other) || isWithin(other, raster) {
			return fmt.Errorf("%w: rasterized directory %s overlaps %s directory %s",
				ErrInvalidLayout, l.Rasterized, name, roots[name])
		}
	}
	return nil
}

// isWithin reports whether path lies inside dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Prepare checks the input root and readies the other stage roots:
// watermarked and export are created if absent, rasterized is recreated empty
// so leftovers from a previous run never reach the reassembly sweep.
func (l Layout) Prepare() error {
	if !fileutil.DirExists(l.Input) {
		return fmt.Errorf("%w: %s%s", ErrDirectoryNotFound, l.Input, hints.ForInputDirectory(l.Input))
	}
	for _, dir := range []string{l.Watermarked, l.Export} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("creating stage directory: %w", err)
		}
	}
	if err := fileutil.ResetDir(l.Rasterized); err != nil {
		return fmt.Errorf("resetting rasterized directory: %w", err)
	}
	return nil
}

// Discover lists the input PDFs (case-insensitive extension, non-recursive),
// sorted by file name, as pending documents.
func (l Layout) Discover() ([]Document, error) {
	names, err := fileutil.ListFiles(l.Input, pdfExt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, l.Input)
		}
		return nil, fmt.Errorf("listing input directory: %w", err)
	}

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		id := DocumentID(fileutil.TrimExt(name))
		docs = append(docs, Document{
			ID:          id,
			Source:      filepath.Join(l.Input, name),
			Watermarked: filepath.Join(l.Watermarked, name),
			ImagesDir:   l.ImagesDir(id),
			Export:      l.ExportPath(id),
			State:       StatePending,
		})
	}
	return docs, nil
}

// findDuplicates maps the index of every document whose ID was already taken
// by an earlier document (a.pdf and a.PDF share ID "a") to that earlier
// document. Only the first document of an ID may own its images dir and export.
func findDuplicates(docs []Document) map[int]Document {
	first := make(map[DocumentID]int, len(docs))
	dups := make(map[int]Document)
	for i, d := range docs {
		if j, ok := first[d.ID]; ok {
			dups[i] = docs[j]
			continue
		}
		first[d.ID] = i
	}
	return dups
}

// ImagesDir returns the rasterized-stage directory for a document.
func (l Layout) ImagesDir(id DocumentID) string {
	return filepath.Join(l.Rasterized, string(id)+ImagesDirSuffix)
}

// ExportPath returns the final PDF path for a document.
func (l Layout) ExportPath(id DocumentID) string {
	return filepath.Join(l.Export, string(id)+pdfExt)
}

// ImagesDirs lists the per-document directories currently in the rasterized
// root, mapped back to their document identifiers.
func (l Layout) ImagesDirs() ([]DocumentID, error) {
	names, err := fileutil.ListDirs(l.Rasterized)
	if err != nil {
		return nil, fmt.Errorf("listing rasterized directory: %w", err)
	}

	var ids []DocumentID
	for _, name := range names {
		if id, ok := DocumentIDFromImagesDir(name); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DocumentIDFromImagesDir strips the images suffix from a directory name.
func DocumentIDFromImagesDir(name string) (DocumentID, bool) {
	id, ok := strings.CutSuffix(name, ImagesDirSuffix)
	if !ok || id == "" {
		return "", false
	}
	return DocumentID(id), true
}

// PageImageName returns the canonical file name for page n (1-based).
func PageImageName(n int) string {
	return fmt.Sprintf("%s%d%s", PageImagePrefix, n, PageImageExt)
}
