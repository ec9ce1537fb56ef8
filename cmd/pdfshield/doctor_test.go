package main

// Notes:
// - LookPath is injected; a found tool points at a path that cannot run, so
//   the version probe degrades to a warning without needing poppler.
// - checkSystem depends on the host temp dir and is only checked for success.

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdfshield "github.com/alnah/go-pdfshield"
)

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Human-readable and JSON diagnostics
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_MissingTool(t *testing.T) {
	t.Parallel()
	root := setupRoot(t, map[string]int{"a.pdf": 1})
	env, stdout, _ := testEnv()

	code := runMain(context.Background(), []string{"doctor", root}, env)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	for _, want := range []string{"pdftoppm not found", "hint: install poppler", "1 document(s)", "Status: Not ready"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunDoctorCmd_MuPDF(t *testing.T) {
	t.Parallel()
	root := setupRoot(t, map[string]int{"a.pdf": 1, "b.pdf": 1})
	env, stdout, _ := testEnv()

	code := runMain(context.Background(), []string{"doctor", root, "--backend", "mupdf"}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d:\n%s", code, ExitSuccess, stdout)
	}
	for _, want := range []string{"[OK] MuPDF: built in", "(120x60)", "2 document(s)", "Status: Ready to run"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()
	root := setupRoot(t, map[string]int{})
	if err := os.Remove(filepath.Join(root, pdfshield.DefaultWatermarkFile)); err != nil {
		t.Fatal(err)
	}
	env, stdout, _ := testEnv()
	env.LookPath = func(file string) (string, error) {
		return filepath.Join(t.TempDir(), file), nil
	}

	code := runMain(context.Background(), []string{"doctor", root, "--json", "--dpi", "300"}, env)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	var got doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decoding JSON: %v\n%s", err, stdout)
	}
	if got.Status != "errors" {
		t.Errorf("status = %q, want errors", got.Status)
	}
	if !got.Raster.Found || got.Raster.Backend != "poppler" || got.Raster.DPI != 300 {
		t.Errorf("rasterizer = %+v", got.Raster)
	}
	if got.Watermark.Usable {
		t.Error("missing watermark reported as usable")
	}
	if !got.Input.Exists || got.Input.Documents != 0 {
		t.Errorf("input = %+v", got.Input)
	}
	if !got.System.TempWritable {
		t.Error("temp dir should be writable")
	}
	// Version probe fails on the fake path; empty input is a warning too.
	if len(got.Warnings) != 2 {
		t.Errorf("warnings = %v, want version and empty input", got.Warnings)
	}
}

func TestRunDoctorCmd_MissingInput(t *testing.T) {
	t.Parallel()
	env, stdout, _ := testEnv()

	code := runMain(context.Background(), []string{"doctor", t.TempDir(), "--backend", "mupdf"}, env)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(stdout.String(), "Input directory not found") {
		t.Errorf("stdout missing input error:\n%s", stdout)
	}
}

func TestRunDoctorCmd_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"doctor", "--nope"}},
		{"bad backend", []string{"doctor", "--backend", "ghostscript"}},
		{"two roots", []string{"doctor", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _, stderr := testEnv()
			if got := runMain(context.Background(), tt.args, env); got != ExitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", got, ExitUsage, stderr)
			}
		})
	}
}
