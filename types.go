package pdfshield

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DocumentID identifies a document across every stage: the input file's base
// name without extension.
type DocumentID string

// Stage is one directory-bounded phase of the pipeline.
type Stage int

const (
	StageDiscover Stage = iota
	StageWatermark
	StageRasterize
	StageReassemble
)

func (s Stage) String() string {
	switch s {
	case StageDiscover:
		return "discover"
	case StageWatermark:
		return "watermark"
	case StageRasterize:
		return "rasterize"
	case StageReassemble:
		return "reassemble"
	}
	return "unknown"
}

// State is the position of a document in the pipeline.
type State int

const (
	StatePending State = iota
	StateWatermarked
	StateRasterized
	StateExported
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateWatermarked:
		return "watermarked"
	case StateRasterized:
		return "rasterized"
	case StateExported:
		return "exported"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// PageImage is one rasterized page. Index is 1-based and contiguous within a document.
type PageImage struct {
	Index  int
	Path   string
	Width  int
	Height int
}

// Document carries one input through the stages.
type Document struct {
	ID          DocumentID
	Source      string // input PDF
	Watermarked string // stage 2 PDF
	ImagesDir   string // stage 3 directory
	Export      string // stage 4 PDF
	Pages       []PageImage
	State       State
}

// DocumentResult is the outcome of processing one document.
// Err is nil on success, otherwise a *StageError.
type DocumentResult struct {
	Document
	PageCount int
	Err       error
	Duration  time.Duration
}

// FailedStage returns the stage that failed, or StageDiscover when the
// result holds no stage error.
func (r DocumentResult) FailedStage() Stage {
	var se *StageError
	if errors.As(r.Err, &se) {
		return se.Stage
	}
	return StageDiscover
}

// BatchReport summarizes one run. Documents are in input order.
type BatchReport struct {
	RunID     uuid.UUID
	Started   time.Time
	Finished  time.Time
	Documents []DocumentResult
}

// Succeeded returns the number of exported documents.
func (b *BatchReport) Succeeded() int {
	n := 0
	for _, d := range b.Documents {
		if d.Err == nil && d.State == StateExported {
			n++
		}
	}
	return n
}

// Failed returns the number of documents that did not reach the export stage.
func (b *BatchReport) Failed() int {
	return len(b.Documents) - b.Succeeded()
}

// Failures returns the failed results, in input order.
func (b *BatchReport) Failures() []DocumentResult {
	var out []DocumentResult
	for _, d := range b.Documents {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}
