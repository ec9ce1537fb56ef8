package main

import (
	"errors"
	"os"

	pdfshield "github.com/alnah/go-pdfshield"
	"github.com/alnah/go-pdfshield/internal/config"
	"github.com/alnah/go-pdfshield/internal/rename"
)

// Exit codes for the pdfshield CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every document exported
	ExitGeneral = 1 // Document failures, unexpected errors
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Input directory or watermark asset missing, permission denied
	ExitTool    = 4 // Rasterization tool not installed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
// A BatchError unwraps to its documents' causes, so a batch where the tool is
// missing exits with ExitTool.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Tool errors (exit 4)
	if errors.Is(err, pdfshield.ErrToolNotFound) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, pdfshield.ErrDirectoryNotFound) ||
		errors.Is(err, pdfshield.ErrMissingAsset) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pdfshield.ErrInvalidAsset) ||
		errors.Is(err, pdfshield.ErrInvalidDPI) ||
		errors.Is(err, pdfshield.ErrInvalidQuality) ||
		errors.Is(err, pdfshield.ErrInvalidOpacity) ||
		errors.Is(err, pdfshield.ErrInvalidScale) ||
		errors.Is(err, pdfshield.ErrInvalidSizing) ||
		errors.Is(err, pdfshield.ErrInvalidLayout) ||
		errors.Is(err, rename.ErrUnknownPreset) ||
		errors.Is(err, rename.ErrInvalidPattern) ||
		errors.Is(err, rename.ErrEmptyTemplate) {
		return ExitUsage
	}

	return ExitGeneral
}
