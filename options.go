package pdfshield

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// Event reports the completion of one stage for one document.
// Err is nil when the stage succeeded.
type Event struct {
	Document DocumentID
	Stage    Stage
	Err      error
}

// ProgressFunc receives stage events, in execution order, on the calling goroutine.
type ProgressFunc func(Event)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithRasterizer replaces the default pdftoppm rasterizer.
// Panics if r is nil (programmer error).
func WithRasterizer(r Rasterizer) Option {
	if r == nil {
		panic("pdfshield: WithRasterizer requires a non-nil Rasterizer")
	}
	return func(p *Pipeline) {
		p.rasterizer = r
	}
}

// WithProgress registers a callback invoked after every stage of every document.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithClock overrides time.Now, for reports with stable timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}
