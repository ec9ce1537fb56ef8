package main

import (
	"io"
	"os"
	"os/exec"
	"time"

	pdfshield "github.com/alnah/go-pdfshield"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now      func() time.Time
	Stdout   io.Writer
	Stderr   io.Writer
	LookPath func(file string) (string, error)

	// Rasterizer overrides the backend selected by raster.backend when set.
	Rasterizer pdfshield.Rasterizer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
	}
}
