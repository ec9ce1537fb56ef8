// Package rename renames PDF files in a directory from a regular expression
// and a replacement template, the way scanned invoices and expense reports
// are normalized before they enter the pipeline.
package rename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alnah/go-pdfshield/internal/fileutil"
)

// Sentinel errors for rename operations.
var (
	ErrUnknownPreset  = errors.New("unknown rename preset")
	ErrInvalidPattern = errors.New("invalid rename pattern")
	ErrEmptyTemplate  = errors.New("rename template cannot be empty")
	ErrTargetExists   = errors.New("rename target already exists")
)

const pdfExt = ".pdf"

// Rule maps a matching file name to a new one. Template uses regexp
// expansion syntax: $1, ${1}, ${name}.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
}

// NewRule compiles pattern and checks template.
func NewRule(name, pattern, template string) (Rule, error) {
	if strings.TrimSpace(template) == "" {
		return Rule{}, ErrEmptyTemplate
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if re.NumSubexp() == 0 {
		return Rule{}, fmt.Errorf("%w: %q has no capture group", ErrInvalidPattern, pattern)
	}
	return Rule{Name: name, Pattern: re, Template: template}, nil
}

// Preset names.
const (
	PresetInvoices = "invoices"
	PresetExpenses = "expenses"
)

// presets keeps pattern and template per preset name.
var presets = map[string][2]string{
	// "Facture FR123TM45-6 client.pdf" -> "FR123TM45-6.pdf"
	PresetInvoices: {`(FR\d+TM\d+-\d+)`, `${1}.pdf`},
	// "2024 - Travel - Paris - FR88-1.pdf" -> "Travel-FR88-1.pdf"
	PresetExpenses: {`.* - (.*) - .* - (FR\d+-\d+)\.pdf$`, `${1}-${2}.pdf`},
}

// Preset returns a built-in rule.
func Preset(name string) (Rule, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return NewRule(strings.ToLower(name), p[0], p[1])
}

// PresetNames lists the built-in rules, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Target returns the new name for name, or false when the rule does not match.
func (r Rule) Target(name string) (string, bool) {
	m := r.Pattern.FindStringSubmatchIndex(name)
	if m == nil {
		return "", false
	}
	out := r.Pattern.ExpandString(nil, r.Template, name, m)
	return string(out), true
}

// Action is what Apply does with one file.
type Action int

const (
	ActionRename    Action = iota // rename From to To
	ActionNoMatch                 // pattern did not match, leave alone
	ActionUnchanged               // already carries its target name
	ActionConflict                // target taken by another file or another step
	ActionInvalid                 // expansion is not a plain file name
)

func (a Action) String() string {
	switch a {
	case ActionRename:
		return "rename"
	case ActionNoMatch:
		return "no match"
	case ActionUnchanged:
		return "unchanged"
	case ActionConflict:
		return "conflict"
	case ActionInvalid:
		return "invalid target"
	}
	return "unknown"
}

// Step is one planned rename inside Dir. From and To are base names.
type Step struct {
	Dir    string
	From   string
	To     string
	Action Action
}

// Plan computes the renames rule would perform on the PDFs of dir without
// touching the filesystem. Steps are sorted by source name.
func Plan(dir string, rule Rule) ([]Step, error) {
	names, err := fileutil.ListFiles(dir, pdfExt)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}

	claimed := make(map[string]string) // target -> first source claiming it
	steps := make([]Step, 0, len(names))
	for _, name := range names {
		step := Step{Dir: dir, From: name}
		to, ok := rule.Target(name)
		switch {
		case !ok:
			step.Action = ActionNoMatch
		case to == name:
			step.To = to
			step.Action = ActionUnchanged
		case !isPlainName(to):
			step.To = to
			step.Action = ActionInvalid
		case existing[to] || fileutil.FileExists(filepath.Join(dir, to)) || claimed[to] != "":
			step.To = to
			step.Action = ActionConflict
		default:
			step.To = to
			step.Action = ActionRename
			claimed[to] = name
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// isPlainName reports whether name is a usable base name.
func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && strings.TrimSpace(name) == name
}

// Apply performs the ActionRename steps and returns how many files were
// renamed. A target that appeared since planning is never overwritten. All
// steps are attempted; errors are joined.
func Apply(steps []Step) (int, error) {
	renamed := 0
	var errs []error
	for _, s := range steps {
		if s.Action != ActionRename {
			continue
		}
		from := filepath.Join(s.Dir, s.From)
		to := filepath.Join(s.Dir, s.To)

		if _, err := os.Lstat(to); err == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrTargetExists, to))
			continue
		}
		if err := os.Rename(from, to); err != nil {
			errs = append(errs, fmt.Errorf("renaming %s: %w", s.From, err))
			continue
		}
		renamed++
	}
	return renamed, errors.Join(errs...)
}
