package pdfshield

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var disableConfigDir sync.Once

// pdfConfig returns a fresh pdfcpu configuration. pdfcpu would otherwise
// create a config directory under the user's home on first use.
func pdfConfig() *model.Configuration {
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in a PDF.
func PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("reading page count: %w", err)
	}
	return n, nil
}

// PageSize is a page's width and height in PDF points.
type PageSize struct {
	Width  float64
	Height float64
}

// PageSizes returns the media box size of every page, in page order.
func PageSizes(pdf []byte) ([]PageSize, error) {
	return pageSizes(bytes.NewReader(pdf))
}

func pageSizes(rs io.ReadSeeker) ([]PageSize, error) {
	dims, err := api.PageDims(rs, pdfConfig())
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}
	sizes := make([]PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = PageSize{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// dim converts a PageSize to pdfcpu's dimension type.
func (p PageSize) dim() *types.Dim {
	return &types.Dim{Width: p.Width, Height: p.Height}
}
