package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page sizing flags. Both must be set together to force
// an explicit page size; otherwise each document's intrinsic size wins.
type pageFlags struct {
	width  float64
	height float64
}

// renderFlags holds rendering backend flags.
type renderFlags struct {
	backend string
	timeout string
	workers int
}

// mergeFlags holds merge step flags.
type mergeFlags struct {
	mergedName     string
	noMerge        bool
	keepSingles    bool
	keepSinglesSet bool // whether --keep-singles was given explicitly
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common commonFlags
	output string
	page   pageFlags
	render renderFlags
	merge  mergeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addPageFlags adds page sizing flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.Float64Var(&f.width, "page-width", 0, "force page width in points (requires --page-height)")
	fs.Float64Var(&f.height, "page-height", 0, "force page height in points (requires --page-width)")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "rendering backend: raster, chrome")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file render timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

// addMergeFlags adds merge flags to a FlagSet.
func addMergeFlags(fs *flag.FlagSet, f *mergeFlags) {
	fs.StringVar(&f.mergedName, "merged-name", "", "merged output file name (default: merged.pdf)")
	fs.BoolVar(&f.noMerge, "no-merge", false, "skip the merge step, keep only per-file PDFs")
	fs.BoolVar(&f.keepSingles, "keep-singles", true, "keep per-file PDFs after merging")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addRenderFlags(fs, &f.render)
	addMergeFlags(fs, &f.merge)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.merge.keepSinglesSet = fs.Changed("keep-singles")

	return f, fs.Args(), nil
}
