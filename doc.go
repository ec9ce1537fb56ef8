// Package pdfshield watermarks PDFs and flattens them into image-only copies.
//
// # Quick Start
//
// Lay out a root directory, drop PDFs in its input stage, and run:
//
//	settings := pdfshield.DefaultSettings("/srv/invoices")
//	p, err := pdfshield.NewPipeline(settings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // input root missing, stage dirs unusable
//	}
//	for _, r := range report.Failures() {
//	    log.Printf("%s: %v", r.ID, r.Err)
//	}
//
// # Stages
//
// Every stage is a directory. A document moves through them by file name:
//
//  1. 1-pdfs/<id>.pdf                  input, never modified
//  2. 2-watermarks/<id>.pdf            overlay drawn centered on every page
//  3. 3-pdf-to-images/<id>_images/     one page_<n>.jpg per page (pdftoppm)
//  4. 4-export/<id>.pdf                one full-bleed image per page
//
// The rasterized stage is wiped at the start of every run. Reassembly is a
// separate sweep over whatever *_images directories it then contains, so a
// document whose rasterization failed is never exported.
//
// A failure in one document is recorded in its DocumentResult and the batch
// continues. Errors unwrap to the sentinels in errors.go:
//
//	if errors.Is(r.Err, pdfshield.ErrToolNotFound) {
//	    // install poppler
//	}
//
// # Configuration
//
// Settings is passed explicitly; nothing is read from the environment.
// Functional options cover collaborators:
//
//	p, err := pdfshield.NewPipeline(settings,
//	    pdfshield.WithLogger(zerolog.New(os.Stderr)),
//	    pdfshield.WithProgress(func(ev pdfshield.Event) { ... }),
//	    pdfshield.WithRasterizer(myRasterizer),
//	)
//
// # Page Sizes
//
// With SizingPixels (default) an exported page is as many points wide as its
// image has pixels, so a 150 DPI raster of an A4 page becomes a ~1240x1754 pt
// page. SizingPhysical divides by DPI/72 and restores the source page size.
//
// # External Tools
//
// The default Rasterizer shells out to poppler's pdftoppm, which must be on
// PATH. The command line tool also offers a cgo MuPDF backend (--backend mupdf)
// that needs no executable.
package pdfshield
