package pdfshield

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline stages.
var (
	ErrMissingAsset      = errors.New("watermark asset not found")
	ErrInvalidAsset      = errors.New("watermark asset is not a PNG or JPEG image")
	ErrComposite         = errors.New("watermark compositing failed")
	ErrRasterization     = errors.New("rasterization failed")
	ErrToolNotFound      = errors.New("rasterization tool not found")
	ErrEmptyOutput       = errors.New("rasterizer produced no page images")
	ErrReencode          = errors.New("image re-encode failed")
	ErrNoImages          = errors.New("no page images found")
	ErrReassembly        = errors.New("PDF reassembly failed")
	ErrDirectoryNotFound = errors.New("input directory not found")
	ErrDuplicateDocument = errors.New("another input PDF has the same document id")

	// Settings validation errors.
	ErrInvalidDPI     = errors.New("invalid DPI")
	ErrInvalidQuality = errors.New("invalid JPEG quality")
	ErrInvalidOpacity = errors.New("invalid watermark opacity")
	ErrInvalidScale   = errors.New("invalid watermark scale")
	ErrInvalidSizing  = errors.New("invalid page sizing")
	ErrInvalidLayout  = errors.New("invalid stage layout")
)

// StageError records which stage failed for which document.
// It unwraps to the underlying cause so errors.Is works on sentinels.
type StageError struct {
	Stage    Stage
	Document DocumentID
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Document, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
