package main

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// newLogger returns a human-readable stage logger when verbose is set,
// and a logger that discards everything otherwise.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    color.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
