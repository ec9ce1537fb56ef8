package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-pdfshield/internal/rename"
)

// runRenameCmd executes the rename command.
func runRenameCmd(args []string, env *Environment) error {
	flags, positional, err := parseRenameFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: rename expects exactly one directory, got %d arguments", ErrUsage, len(positional))
	}
	setColor(flags.common.noColor)

	rule, err := renameRule(flags)
	if err != nil {
		return err
	}

	steps, err := rename.Plan(positional[0], rule)
	if err != nil {
		return err
	}

	if flags.dryRun {
		if !flags.common.quiet {
			printSteps(env.Stdout, steps, true, flags.common.verbose)
		}
		return nil
	}

	n, err := rename.Apply(steps)
	if !flags.common.quiet {
		printSteps(env.Stdout, steps, false, flags.common.verbose)
		fmt.Fprintf(env.Stdout, "\n%d renamed, %d skipped\n", n, len(steps)-n)
	}
	return err
}

// renameRule resolves --preset or --pattern/--template into a rule.
func renameRule(f *renameFlags) (rename.Rule, error) {
	custom := f.pattern != "" || f.template != ""
	switch {
	case f.preset != "" && custom:
		return rename.Rule{}, fmt.Errorf("%w: --preset cannot be combined with --pattern or --template", ErrUsage)
	case f.preset != "":
		return rename.Preset(f.preset)
	case custom:
		return rename.NewRule("custom", f.pattern, f.template)
	}
	return rename.Rule{}, fmt.Errorf("%w: rename needs --preset (%s) or --pattern and --template",
		ErrUsage, strings.Join(rename.PresetNames(), ", "))
}

// printSteps prints planned renames and conflicts. Unmatched and unchanged
// files are listed only when verbose.
func printSteps(w io.Writer, steps []rename.Step, dryRun, verbose bool) {
	verb := "Renamed"
	if dryRun {
		verb = "Would rename"
	}
	for _, s := range steps {
		switch s.Action {
		case rename.ActionRename:
			fmt.Fprintf(w, "%s %s -> %s\n", verb, s.From, s.To)
		case rename.ActionConflict:
			warnColor.Fprintf(w, "Skipped %s: %s already exists\n", s.From, s.To)
		case rename.ActionInvalid:
			warnColor.Fprintf(w, "Skipped %s: %q is not a valid file name\n", s.From, s.To)
		case rename.ActionNoMatch, rename.ActionUnchanged:
			if verbose {
				fmt.Fprintf(w, "Skipped %s: %s\n", s.From, s.Action)
			}
		}
	}
}
