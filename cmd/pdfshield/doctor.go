package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	pdfshield "github.com/alnah/go-pdfshield"
	"github.com/alnah/go-pdfshield/internal/config"
	"github.com/alnah/go-pdfshield/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Raster    rasterInfo    `json:"rasterizer"`
	Watermark watermarkInfo `json:"watermark"`
	Input     inputInfo     `json:"input"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// rasterInfo holds rasterization backend detection results.
type rasterInfo struct {
	Backend string `json:"backend"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	DPI     int    `json:"dpi"`
}

// watermarkInfo holds watermark asset check results.
type watermarkInfo struct {
	Path   string `json:"path"`
	Usable bool   `json:"usable"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// inputInfo holds input stage directory check results.
type inputInfo struct {
	Dir       string `json:"dir"`
	Exists    bool   `json:"exists"`
	Documents int    `json:"documents"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, cfg, err := doctorConfig(args, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return reportDoctor(env, flags.json, runDoctor(cfg, env))
}

// doctorConfig parses doctor flags and merges them into the loaded config.
func doctorConfig(args []string, env *Environment) (*doctorFlags, *config.Config, error) {
	flags, positional, err := parseDoctorFlags(args, env.Stdout)
	if err != nil {
		return nil, nil, err
	}
	root, err := rootArg(positional)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(flags.common)
	if err != nil {
		return nil, nil, err
	}
	mergeStageFlags(root, flags.stages, cfg)
	mergeWatermarkFlags(flags.watermark, cfg)
	mergeRasterFlags(flags.raster, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return flags, cfg, nil
}

// reportDoctor prints the result and maps its status to an exit code.
func reportDoctor(env *Environment, jsonOutput bool, result *doctorResult) int {
	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	settings, err := buildSettings(cfg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid settings: %v", err))
	} else {
		checkRasterizer(result, cfg, settings, env)
		checkWatermark(result, settings)
		checkInput(result, settings)
	}
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkRasterizer detects the configured rasterization backend.
func checkRasterizer(result *doctorResult, cfg *config.Config, s pdfshield.Settings, env *Environment) {
	result.Raster.DPI = s.DPI

	if strings.EqualFold(cfg.Raster.Backend, config.BackendMuPDF) {
		result.Raster.Backend = config.BackendMuPDF
		result.Raster.Found = true
		return
	}

	result.Raster.Backend = config.BackendPoppler
	tool := toolName(cfg)
	path, err := env.LookPath(tool)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found%s", tool, hints.ForToolNotFound(tool)))
		return
	}

	result.Raster.Found = true
	result.Raster.Path = path

	version, err := toolVersion(path)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", tool, err))
		return
	}
	result.Raster.Version = version
}

// toolVersion runs "<tool> -v". Poppler tools print their version on stderr.
func toolVersion(path string) (string, error) {
	out, err := exec.Command(path, "-v").CombinedOutput() // #nosec G204 -- path comes from exec.LookPath
	if err != nil {
		return "", err
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(out)).ReadLine()
	return strings.TrimSpace(string(line)), nil
}

// checkWatermark loads the watermark asset the way the pipeline does.
func checkWatermark(result *doctorResult, s pdfshield.Settings) {
	result.Watermark.Path = s.WatermarkPath

	c, err := pdfshield.NewCompositor(s.WatermarkPath, s.Watermark)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Watermark: %v", err))
		return
	}
	result.Watermark.Usable = true
	result.Watermark.Width, result.Watermark.Height = c.AssetSize()
}

// checkInput verifies the input stage directory and counts its PDFs.
func checkInput(result *doctorResult, s pdfshield.Settings) {
	result.Input.Dir = s.Layout.Input

	docs, err := s.Layout.Discover()
	if err != nil {
		if errors.Is(err, pdfshield.ErrDirectoryNotFound) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Input directory not found: %s%s", s.Layout.Input, hints.ForInputDirectory(s.Layout.Input)))
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Input directory: %v", err))
		return
	}

	result.Input.Exists = true
	result.Input.Documents = len(docs)
	if len(docs) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No PDF documents in %s", s.Layout.Input))
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "pdfshield-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pdfshield doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Rasterizer")
	switch {
	case r.Raster.Backend == config.BackendMuPDF:
		fmt.Fprintln(w, "  [OK] MuPDF: built in")
	case r.Raster.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Raster.Path)
		if r.Raster.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Raster.Version)
		}
	case r.Raster.Backend != "":
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	if r.Raster.DPI != 0 {
		fmt.Fprintf(w, "  [OK] Resolution: %d dpi\n", r.Raster.DPI)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Watermark")
	if r.Watermark.Usable {
		fmt.Fprintf(w, "  [OK] %s (%dx%d)\n", r.Watermark.Path, r.Watermark.Width, r.Watermark.Height)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: not usable\n", r.Watermark.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Input")
	if r.Input.Exists {
		fmt.Fprintf(w, "  [OK] %s: %d document(s)\n", r.Input.Dir, r.Input.Documents)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: not found\n", r.Input.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to run")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
