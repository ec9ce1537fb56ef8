package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	pdfshield "github.com/alnah/go-pdfshield"
)

// progressBar advances once per document, when it is exported or fails.
type progressBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, documents int) *progressBar {
	bar := progressbar.NewOptions(documents,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &progressBar{bar: bar}
}

// observe is a pdfshield.ProgressFunc.
func (p *progressBar) observe(ev pdfshield.Event) {
	p.bar.Describe(fmt.Sprintf("%s: %s", ev.Document, ev.Stage))
	if ev.Err != nil || ev.Stage == pdfshield.StageReassemble {
		_ = p.bar.Add(1)
	}
}

func (p *progressBar) finish() {
	_ = p.bar.Finish()
}
