package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: svg2pdf [command] [flags] <input>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert SVG files to PDF and merge them (default)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'svg2pdf help convert' for conversion flags.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: svg2pdf convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert SVG files to single-page PDFs and merge them into one document.")
	fmt.Fprintln(w, "Pages appear in the merged output in lexical filename order.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    SVG file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to inputs)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -b, --backend <s>         Backend: raster (default), chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-file render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --page-width <f>      Force page width in points")
	fmt.Fprintln(w, "      --page-height <f>     Force page height in points")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge:")
	fmt.Fprintln(w, "      --merged-name <s>     Merged file name (default: merged.pdf)")
	fmt.Fprintln(w, "      --no-merge            Skip merging, keep only per-file PDFs")
	fmt.Fprintln(w, "      --keep-singles        Keep per-file PDFs after merging (default: true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}
