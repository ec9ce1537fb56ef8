package pdfshield

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-pdfshield/internal/fileutil"
	"github.com/alnah/go-pdfshield/internal/hints"
)

// Rasterizer turns every page of a PDF into one JPEG in outputDir, named
// page_<n>.jpg with n contiguous from 1, and returns them in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outputDir string, dpi int) ([]PageImage, error)
}

// DefaultRasterTool is the poppler executable used by PopplerRasterizer.
const DefaultRasterTool = "pdftoppm"

// toolPrefix is the output-file prefix handed to the tool.
const toolPrefix = "page"

// toolOutputPattern matches pdftoppm names: <prefix>-<n>.jpg, where n may or
// may not be zero-padded depending on the page count and poppler version.
var toolOutputPattern = regexp.MustCompile(`^` + toolPrefix + `-(\d+)\.jpe?g$`)

// PopplerRasterizer rasterizes through poppler's pdftoppm.
type PopplerRasterizer struct {
	Runner CommandRunner
	Tool   string // executable name or path; empty = DefaultRasterTool
}

// NewPopplerRasterizer creates a PopplerRasterizer with a real command runner.
func NewPopplerRasterizer(tool string) *PopplerRasterizer {
	if tool == "" {
		tool = DefaultRasterTool
	}
	return &PopplerRasterizer{Runner: &ExecRunner{}, Tool: tool}
}

// Rasterize runs `pdftoppm -jpeg -r <dpi> <pdf> <outputDir>/page`, then renames
// the produced files to page_<n>.jpg in numeric page order.
func (r *PopplerRasterizer) Rasterize(ctx context.Context, pdfPath, outputDir string, dpi int) ([]PageImage, error) {
	if err := validateDPI(dpi); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, fileutil.DirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tool := r.Tool
	if tool == "" {
		tool = DefaultRasterTool
	}

	prefix := filepath.Join(outputDir, toolPrefix)
	_, stderr, err := r.Runner.Run(ctx, tool, "-jpeg", "-r", strconv.Itoa(dpi), pdfPath, prefix)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRasterization, ctxErr)
		}
		if isToolNotFound(err, stderr) {
			return nil, fmt.Errorf("%w: %w: %s%s", ErrRasterization, ErrToolNotFound, tool, hints.ForToolNotFound(tool))
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRasterization, strings.TrimSpace(stderr), err)
	}

	return renameToolOutput(outputDir)
}

// isToolNotFound recognizes a missing executable from the exec error or the
// shell-style message some wrappers print instead.
func isToolNotFound(err error, stderr string) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	msg := strings.ToLower(err.Error() + " " + stderr)
	return strings.Contains(msg, "command not found") ||
		strings.Contains(msg, "executable file not found") ||
		strings.Contains(msg, "is not recognized as an internal or external command")
}

// toolPage is one file produced by the tool and its parsed page number.
type toolPage struct {
	name string
	page int
}

// renameToolOutput sorts the tool's files by their numeric page suffix and
// renames them to page_1.jpg ... page_N.jpg.
func renameToolOutput(outputDir string) ([]PageImage, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("listing rasterizer output: %w", err)
	}

	var produced []toolPage
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		n, ok := parseToolPage(e.Name())
		if !ok {
			continue
		}
		produced = append(produced, toolPage{name: e.Name(), page: n})
	}
	if len(produced) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyOutput, outputDir)
	}

	sort.Slice(produced, func(i, j int) bool { return produced[i].page < produced[j].page })

	pages := make([]PageImage, 0, len(produced))
	for i, p := range produced {
		target := filepath.Join(outputDir, PageImageName(i+1))
		if err := os.Rename(filepath.Join(outputDir, p.name), target); err != nil {
			return nil, fmt.Errorf("renaming %s: %w", p.name, err)
		}
		w, h, err := imageSize(target)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrRasterization, i+1, err)
		}
		pages = append(pages, PageImage{Index: i + 1, Path: target, Width: w, Height: h})
	}
	return pages, nil
}

// parseToolPage extracts the page number from a tool output name.
func parseToolPage(name string) (int, bool) {
	m := toolOutputPattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
