package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshield <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Watermark, rasterize and reassemble every input PDF")
	fmt.Fprintln(w, "  rename     Rename PDFs with a preset or custom pattern")
	fmt.Fprintln(w, "  doctor     Check the rasterizer, watermark and directories")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pdfshield help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshield run [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Process every PDF in <root>/1-pdfs through the stage directories:")
	fmt.Fprintln(w, "2-watermarks, 3-pdf-to-images (wiped on every run) and 4-export.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  root    Directory holding the stage directories (default: current directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Directories:")
	fmt.Fprintln(w, "  -i, --input <dir>          Input PDF directory")
	fmt.Fprintln(w, "      --watermarked-dir <dir> Watermarked PDF directory")
	fmt.Fprintln(w, "      --images-dir <dir>     Page image directory")
	fmt.Fprintln(w, "  -o, --output <dir>         Export directory")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watermark:")
	fmt.Fprintln(w, "  -w, --watermark <path>     PNG or JPEG overlay (default: <root>/watermark.png)")
	fmt.Fprintln(w, "      --wm-scale <f>         Scale relative to the image's pixel size (default: 0.5)")
	fmt.Fprintln(w, "      --wm-opacity <f>       Opacity, 0.0-1.0 (default: 0.2)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rasterization:")
	fmt.Fprintln(w, "      --backend <s>          poppler (pdftoppm) or mupdf (built in)")
	fmt.Fprintln(w, "      --tool <path>          pdftoppm executable")
	fmt.Fprintln(w, "      --dpi <n>              Resolution, 36-1200 (default: 150)")
	fmt.Fprintln(w, "  -t, --timeout <d>          Per-document limit (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Re-encode:")
	fmt.Fprintln(w, "      --reencode             Recompress page images before reassembly")
	fmt.Fprintln(w, "      --quality <n>          JPEG quality, 1-100 (default: 35)")
	fmt.Fprintln(w, "      --png                  Follow with a max-compression PNG pass")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "      --page-size <s>        pixels (1 px = 1 pt) or physical (source size)")
	fmt.Fprintln(w, "      --report <path>        Write a JSON batch report")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Log every stage")
	fmt.Fprintln(w, "      --progress             Show a progress bar")
	fmt.Fprintln(w, "      --no-color             Disable colored output")
}

// printRenameUsage prints usage for the rename command.
func printRenameUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshield rename <dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rename the PDFs of <dir>. Files that do not match, already carry their")
	fmt.Fprintln(w, "target name, or would overwrite another file are skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rules:")
	fmt.Fprintln(w, "  -p, --preset <name>        invoices: keep the FR...TM...-N reference")
	fmt.Fprintln(w, "                             expenses: <vendor>-<reference>.pdf")
	fmt.Fprintln(w, "      --pattern <regexp>     Custom pattern with capture groups")
	fmt.Fprintln(w, "      --template <s>         Custom name, e.g. ${1}.pdf")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -n, --dry-run              Print the renames without performing them")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Also list skipped files")
	fmt.Fprintln(w, "      --no-color             Disable colored output")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfshield doctor [root] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a run can succeed: rasterizer, watermark asset, input")
	fmt.Fprintln(w, "directory and temp directory. Accepts the run command's directory,")
	fmt.Fprintln(w, "watermark and rasterization flags.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                 Print results as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "rename":
		printRenameUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pdfshield version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pdfshield help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
