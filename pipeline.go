package pdfshield

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-pdfshield/internal/fileutil"
	"github.com/alnah/go-pdfshield/internal/hints"
)

// Pipeline drives a batch of documents through the four stages:
// watermark, rasterize, then a separate reassembly sweep over the rasterized root.
// Documents are processed one at a time.
type Pipeline struct {
	settings    Settings
	rasterizer  Rasterizer
	reassembler *Reassembler
	logger      zerolog.Logger
	progress    ProgressFunc
	now         func() time.Time
}

// NewPipeline validates settings and builds a pipeline. By default pages are
// rasterized with pdftoppm and nothing is logged.
func NewPipeline(settings Settings, opts ...Option) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	reassembler, err := NewReassembler(settings)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		settings:    settings,
		rasterizer:  NewPopplerRasterizer(DefaultRasterTool),
		reassembler: reassembler,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Settings returns the pipeline's configuration.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Run processes every PDF of the input root. A failing document does not stop
// the batch: its error is recorded in the report and the next document runs.
// The returned error is reserved for run-level failures (missing input root,
// unusable stage directories, cancellation before discovery); the report is
// always non-nil.
func (p *Pipeline) Run(ctx context.Context) (*BatchReport, error) {
	report := &BatchReport{RunID: uuid.New(), Started: p.now()}
	defer func() { report.Finished = p.now() }()

	layout := p.settings.Layout
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if err := layout.Prepare(); err != nil {
		return report, err
	}

	docs, err := layout.Discover()
	if err != nil {
		return report, err
	}
	p.logger.Info().Str("run", report.RunID.String()).Int("documents", len(docs)).
		Str("input", layout.Input).Msg("batch started")

	compositor, assetErr := NewCompositor(p.settings.WatermarkPath, p.settings.Watermark)
	if assetErr != nil {
		p.logger.Error().Err(assetErr).Msg("watermark asset unusable, every document will fail")
	}

	dups := findDuplicates(docs)
	results := make([]DocumentResult, len(docs))
	index := make(map[DocumentID]int, len(docs))
	for i, doc := range docs {
		if owner, ok := dups[i]; ok {
			results[i] = p.rejectDuplicate(doc, owner)
			continue
		}
		index[doc.ID] = i
		results[i] = p.prepareDocument(ctx, compositor, assetErr, doc)
	}

	// Second sweep: reassemble whatever reached the rasterized root.
	ids, err := layout.ImagesDirs()
	if err != nil {
		report.Documents = results
		return report, err
	}
	for _, id := range ids {
		i, ok := index[id]
		if !ok {
			// Only reachable if something else writes into the rasterized root mid-run.
			results = append(results, DocumentResult{Document: Document{
				ID:        id,
				ImagesDir: layout.ImagesDir(id),
				Export:    layout.ExportPath(id),
				State:     StateRasterized,
			}})
			i = len(results) - 1
		}
		if results[i].Err != nil {
			continue
		}
		p.exportDocument(ctx, &results[i])
	}

	for i := range results {
		r := &results[i]
		if r.Err == nil && r.State != StateExported {
			p.fail(r, StageReassemble, fmt.Errorf("%w: %s", ErrNoImages, r.ImagesDir))
		}
	}

	report.Documents = results
	p.logger.Info().Str("run", report.RunID.String()).Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).Msg("batch finished")
	return report, nil
}

// prepareDocument runs the watermark and rasterize stages for one document.
func (p *Pipeline) prepareDocument(ctx context.Context, c *Compositor, assetErr error, doc Document) (res DocumentResult) {
	start := p.now()
	res = DocumentResult{Document: doc}
	defer func() { res.Duration += p.now().Sub(start) }()

	log := p.logger.With().Str("document", string(doc.ID)).Logger()

	if err := ctx.Err(); err != nil {
		p.fail(&res, StageWatermark, err)
		return res
	}

	// Stage 1 -> 2
	if assetErr != nil {
		p.fail(&res, StageWatermark, assetErr)
		return res
	}
	data, err := c.Composite(ctx, doc.Source)
	if err == nil {
		err = fileutil.WriteFileAtomic(doc.Watermarked, data)
	}
	if err != nil {
		p.fail(&res, StageWatermark, err)
		return res
	}
	res.State = StateWatermarked
	log.Info().Str("output", doc.Watermarked).Msg("watermarked")
	p.emit(Event{Document: doc.ID, Stage: StageWatermark})

	// Stage 2 -> 3
	rctx, cancel := p.rasterizeContext(ctx)
	pages, err := p.rasterizer.Rasterize(rctx, doc.Watermarked, doc.ImagesDir, p.settings.DPI)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w%s", err, hints.ForRasterizeTimeout())
		}
		// No partial page set may reach the reassembly sweep.
		if rmErr := os.RemoveAll(doc.ImagesDir); rmErr != nil {
			log.Warn().Err(rmErr).Msg("removing partial page images")
		}
		p.fail(&res, StageRasterize, err)
		return res
	}
	res.Pages = pages
	res.PageCount = len(pages)
	res.State = StateRasterized
	log.Info().Int("pages", len(pages)).Str("output", doc.ImagesDir).Msg("rasterized")
	p.emit(Event{Document: doc.ID, Stage: StageRasterize})

	return res
}

// rejectDuplicate fails doc before any stage runs: its ID, images dir and
// export path belong to owner.
func (p *Pipeline) rejectDuplicate(doc, owner Document) DocumentResult {
	res := DocumentResult{Document: Document{ID: doc.ID, Source: doc.Source, State: StatePending}}
	p.fail(&res, StageDiscover, fmt.Errorf("%w: %s and %s both map to %q",
		ErrDuplicateDocument, filepath.Base(owner.Source), filepath.Base(doc.Source), doc.ID))
	return res
}

// exportDocument runs the reassembly stage for one document.
func (p *Pipeline) exportDocument(ctx context.Context, res *DocumentResult) {
	start := p.now()
	defer func() { res.Duration += p.now().Sub(start) }()

	if err := ctx.Err(); err != nil {
		p.fail(res, StageReassemble, err)
		return
	}

	n, err := p.reassembler.Reassemble(ctx, res.ImagesDir, res.Export)
	if err != nil {
		p.fail(res, StageReassemble, err)
		return
	}
	res.PageCount = n
	res.State = StateExported
	p.logger.Info().Str("document", string(res.ID)).Int("pages", n).Str("output", res.Export).Msg("exported")
	p.emit(Event{Document: res.ID, Stage: StageReassemble})
}

// rasterizeContext applies the optional per-document rasterize timeout.
func (p *Pipeline) rasterizeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.settings.RasterizeTimeout > 0 {
		return context.WithTimeout(ctx, p.settings.RasterizeTimeout)
	}
	return context.WithCancel(ctx)
}

// fail records a stage failure on res, logs it and emits the event.
func (p *Pipeline) fail(res *DocumentResult, stage Stage, err error) {
	res.State = StateFailed
	res.Err = &StageError{Stage: stage, Document: res.ID, Err: err}
	p.logger.Error().Str("document", string(res.ID)).Str("stage", stage.String()).Err(err).Msg("document failed")
	p.emit(Event{Document: res.ID, Stage: stage, Err: err})
}

func (p *Pipeline) emit(ev Event) {
	if p.progress != nil {
		p.progress(ev)
	}
}
