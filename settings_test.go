package pdfshield

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestDefaultSettings
// ---------------------------------------------------------------------------

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings("/data")

	if s.DPI != DefaultDPI {
		t.Errorf("DPI = %d, want %d", s.DPI, DefaultDPI)
	}
	if s.WatermarkPath != filepath.Join("/data", DefaultWatermarkFile) {
		t.Errorf("WatermarkPath = %q", s.WatermarkPath)
	}
	if s.Reencode.Enabled {
		t.Error("re-encode should be disabled by default")
	}
	if s.Reencode.JPEGQuality != DefaultJPEGQuality {
		t.Errorf("JPEGQuality = %d, want %d", s.Reencode.JPEGQuality, DefaultJPEGQuality)
	}
	if s.Sizing != SizingPixels {
		t.Errorf("Sizing = %q, want %q", s.Sizing, SizingPixels)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default settings should validate, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestSettings_Validate
// ---------------------------------------------------------------------------

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr error
	}{
		{
			name:    "defaults",
			modify:  func(*Settings) {},
			wantErr: nil,
		},
		{
			name:    "minimum DPI",
			modify:  func(s *Settings) { s.DPI = MinDPI },
			wantErr: nil,
		},
		{
			name:    "DPI too low",
			modify:  func(s *Settings) { s.DPI = MinDPI - 1 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "DPI too high",
			modify:  func(s *Settings) { s.DPI = MaxDPI + 1 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "zero opacity",
			modify:  func(s *Settings) { s.Watermark.Opacity = 0 },
			wantErr: ErrInvalidOpacity,
		},
		{
			name:    "opacity above one",
			modify:  func(s *Settings) { s.Watermark.Opacity = 1.5 },
			wantErr: ErrInvalidOpacity,
		},
		{
			name:    "negative scale",
			modify:  func(s *Settings) { s.Watermark.Scale = -1 },
			wantErr: ErrInvalidScale,
		},
		{
			name:    "quality ignored when re-encode disabled",
			modify:  func(s *Settings) { s.Reencode.JPEGQuality = 0 },
			wantErr: nil,
		},
		{
			name: "quality checked when re-encode enabled",
			modify: func(s *Settings) {
				s.Reencode.Enabled = true
				s.Reencode.JPEGQuality = 101
			},
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "unknown sizing",
			modify:  func(s *Settings) { s.Sizing = "inches" },
			wantErr: ErrInvalidSizing,
		},
		{
			name:    "empty layout dir",
			modify:  func(s *Settings) { s.Layout.Export = "" },
			wantErr: ErrInvalidLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSettings(t.TempDir())
			tt.modify(&s)
			err := s.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Validate_NegativeTimeout(t *testing.T) {
	t.Parallel()

	s := DefaultSettings(t.TempDir())
	s.RasterizeTimeout = -time.Second

	if err := s.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}
}
