package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	pdfshield "github.com/alnah/go-pdfshield"
	"github.com/alnah/go-pdfshield/internal/fileutil"
)

var (
	failColor = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// setColor disables colored output when requested. NO_COLOR and non-terminal
// outputs are handled by the color package itself.
func setColor(disabled bool) {
	if disabled && !color.NoColor {
		color.NoColor = true
	}
}

// printReport prints one line per document and a summary.
// Failures go to stderr, successes to stdout.
func printReport(stdout, stderr io.Writer, report *pdfshield.BatchReport) {
	if len(report.Documents) == 0 {
		fmt.Fprintln(stdout, "No PDF documents found")
		return
	}
	for _, d := range report.Documents {
		if d.Err != nil {
			failColor.Fprintf(stderr, "FAILED %s: %v\n", d.ID, d.Err)
			continue
		}
		okColor.Fprintf(stdout, "Created %s", displayPath(d.Export))
		fmt.Fprintf(stdout, " (%d pages, %s)\n", d.PageCount, d.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(stdout, "\n%d succeeded, %d failed\n", report.Succeeded(), report.Failed())
}

// printFailures prints only failed documents, for --quiet.
func printFailures(stderr io.Writer, report *pdfshield.BatchReport) {
	for _, d := range report.Failures() {
		failColor.Fprintf(stderr, "FAILED %s: %v\n", d.ID, d.Err)
	}
}

// jsonReport is the machine-readable form of a batch report.
type jsonReport struct {
	RunID     string         `json:"run_id"`
	Started   time.Time      `json:"started"`
	Finished  time.Time      `json:"finished"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Documents []jsonDocument `json:"documents"`
}

// jsonDocument is one document entry of a jsonReport.
type jsonDocument struct {
	ID         string `json:"id"`
	Source     string `json:"source,omitempty"`
	Export     string `json:"export,omitempty"`
	State      string `json:"state"`
	Pages      int    `json:"pages"`
	DurationMS int64  `json:"duration_ms"`
	Stage      string `json:"failed_stage,omitempty"`
	Error      string `json:"error,omitempty"`
}

// newJSONReport converts a batch report for encoding.
func newJSONReport(report *pdfshield.BatchReport) jsonReport {
	out := jsonReport{
		RunID:     report.RunID.String(),
		Started:   report.Started,
		Finished:  report.Finished,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Documents: make([]jsonDocument, 0, len(report.Documents)),
	}
	for _, d := range report.Documents {
		doc := jsonDocument{
			ID:         string(d.ID),
			Source:     d.Source,
			State:      d.State.String(),
			Pages:      d.PageCount,
			DurationMS: d.Duration.Milliseconds(),
		}
		if d.Err != nil {
			doc.Stage = d.FailedStage().String()
			doc.Error = d.Err.Error()
		} else {
			doc.Export = d.Export
		}
		out.Documents = append(out.Documents, doc)
	}
	return out
}

// writeReport writes the JSON report atomically to path.
func writeReport(path string, report *pdfshield.BatchReport) error {
	data, err := json.MarshalIndent(newJSONReport(report), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
