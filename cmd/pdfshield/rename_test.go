package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touchAll(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.7"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ---------------------------------------------------------------------------
// TestRunRenameCmd - Preset and custom rules through the CLI
// ---------------------------------------------------------------------------

func TestRunRenameCmd_Preset(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touchAll(t, dir,
		"Facture client FR123TM456-7 mars.pdf",
		"FR9TM9-9.pdf",
		"notes.pdf",
	)
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{"rename", dir, "--preset", "invoices"}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, stderr)
	}
	if !exists(filepath.Join(dir, "FR123TM456-7.pdf")) {
		t.Error("invoice was not renamed")
	}
	if !exists(filepath.Join(dir, "notes.pdf")) || !exists(filepath.Join(dir, "FR9TM9-9.pdf")) {
		t.Error("non-matching and already-named files must be left alone")
	}
	for _, want := range []string{"Renamed Facture client FR123TM456-7 mars.pdf -> FR123TM456-7.pdf", "1 renamed, 2 skipped"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunRenameCmd_DryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touchAll(t, dir, "Hotel - Ibis - 2024 - FR12-3.pdf")
	env, stdout, _ := testEnv()

	code := runMain(context.Background(), []string{"rename", dir, "-p", "expenses", "--dry-run"}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !exists(filepath.Join(dir, "Hotel - Ibis - 2024 - FR12-3.pdf")) {
		t.Error("dry run must not rename")
	}
	if !strings.Contains(stdout.String(), "Would rename Hotel - Ibis - 2024 - FR12-3.pdf -> Ibis-FR12-3.pdf") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunRenameCmd_Conflict(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touchAll(t, dir, "a-1.pdf", "b-1.pdf", "1.pdf")
	env, stdout, _ := testEnv()

	code := runMain(context.Background(), []string{"rename", dir, "--pattern", `^\w-(\d)`, "--template", "${1}.pdf"}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !exists(filepath.Join(dir, "a-1.pdf")) || !exists(filepath.Join(dir, "b-1.pdf")) {
		t.Error("files whose target exists must be kept")
	}
	if !strings.Contains(stdout.String(), "Skipped a-1.pdf: 1.pdf already exists") {
		t.Errorf("stdout missing conflict line:\n%s", stdout)
	}
}

func TestRunRenameCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no directory", []string{"rename", "--preset", "invoices"}, ExitUsage},
		{"no rule", []string{"rename", "."}, ExitUsage},
		{"preset and pattern", []string{"rename", ".", "--preset", "invoices", "--pattern", "(x)"}, ExitUsage},
		{"unknown preset", []string{"rename", ".", "--preset", "receipts"}, ExitUsage},
		{"pattern without group", []string{"rename", ".", "--pattern", "x", "--template", "y.pdf"}, ExitUsage},
		{"missing template", []string{"rename", ".", "--pattern", "(x)"}, ExitUsage},
		{"missing directory", []string{"rename", "/nonexistent/pdfshield", "--preset", "invoices"}, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _, stderr := testEnv()
			if got := runMain(context.Background(), tt.args, env); got != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", got, tt.want, stderr)
			}
		})
	}
}
