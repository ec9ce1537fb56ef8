// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"
)

// GOOS is the platform used to pick install instructions. Tests override it.
var GOOS = runtime.GOOS

// installCommands maps a platform to the package-manager line installing poppler.
var installCommands = map[string]string{
	"darwin":  "brew install poppler",
	"linux":   "sudo apt-get install poppler-utils (or dnf install poppler-utils)",
	"windows": "choco install poppler",
	"freebsd": "pkg install poppler-utils",
}

// ForToolNotFound returns an install hint for a missing rasterization tool.
func ForToolNotFound(tool string) string {
	if tool != "" && tool != "pdftoppm" {
		return format("install " + tool + " or set raster.tool to the full path of the executable")
	}
	cmd, ok := installCommands[GOOS]
	if !ok {
		return format("install poppler (provides pdftoppm) with your package manager")
	}
	return format("install poppler: " + cmd)
}

// ForMissingAsset returns hints for a missing watermark image.
func ForMissingAsset(path string) string {
	return formatHints([]string{
		"expected a PNG or JPEG at " + path,
		"use --watermark /path/to/mark.png",
	})
}

// ForInputDirectory returns hints when the input stage directory is missing.
func ForInputDirectory(path string) string {
	return format("create " + path + " and put the PDFs to process in it, or use --input")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-pdfshield"+string(os.PathSeparator)) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForRasterizeTimeout returns a hint about raising the per-document timeout.
func ForRasterizeTimeout() string {
	return format("for large documents, raise --timeout or lower --dpi")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
