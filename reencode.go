package pdfshield

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

// Reencoder recompresses page images before reassembly, trading visible
// artifacts for a smaller export.
type Reencoder struct {
	JPEGQuality int
	PNGPass     bool // re-encode the JPEG result as PNG at maximum compression
}

// NewReencoder builds a Reencoder from settings, or returns nil when the pass is disabled.
func NewReencoder(s ReencodeSettings) (*Reencoder, error) {
	if !s.Enabled {
		return nil, nil
	}
	if err := validateQuality(s.JPEGQuality); err != nil {
		return nil, err
	}
	return &Reencoder{JPEGQuality: s.JPEGQuality, PNGPass: s.PNGPass}, nil
}

// Reencode returns the recompressed bytes of the image at imagePath.
// Output is deterministic for identical input and settings.
func (r *Reencoder) Reencode(imagePath string) ([]byte, error) {
	f, err := os.Open(imagePath) // #nosec G304 -- page image inside the rasterized stage
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReencode, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrReencode, imagePath, err)
	}
	return r.encode(img)
}

func (r *Reencoder) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: jpeg pass: %v", ErrReencode, err)
	}
	if !r.PNGPass {
		return buf.Bytes(), nil
	}

	lossy, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading jpeg pass: %v", ErrReencode, err)
	}
	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&out, lossy); err != nil {
		return nil, fmt.Errorf("%w: png pass: %v", ErrReencode, err)
	}
	return out.Bytes(), nil
}

// imageSize returns the pixel dimensions of an image file without decoding it fully.
func imageSize(path string) (width, height int, err error) {
	f, err := os.Open(path) // #nosec G304 -- page image inside the rasterized stage
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
