package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	svg2pdf "github.com/alnah/go-svg2pdf"
	"github.com/alnah/go-svg2pdf/internal/config"
	"github.com/alnah/go-svg2pdf/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadSVG            = errors.New("failed to read SVG file")
	ErrWritePDF           = errors.New("failed to write PDF file")
	ErrWriteMerged        = errors.New("failed to write merged PDF")
	ErrInvalidExtension   = errors.New("file must have .svg extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidPageFlags   = errors.New("--page-width and --page-height must be set together")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	PDF        []byte
	Page       svg2pdf.PageSize
	Warnings   []svg2pdf.Warning
	Err        error
	Duration   time.Duration
}

// runConvert orchestrates the conversion and merge process: discover
// inputs, render each to a single-page PDF in parallel, then merge the
// successful pages in input order.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, newPool PoolFactory, env *Environment) error {
	if err := validateWorkers(flags.render.workers); err != nil {
		return err
	}

	explicitPage, err := explicitPageSize(flags)
	if err != nil {
		return err
	}

	// Load configuration
	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlagsIntoConfig(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Resolve input path and output directory
	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	// Discover files to convert
	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no SVG files found in %s", ErrNoInput, inputPath)
	}

	// Build converter options from the merged config
	opts, err := converterOptions(cfg)
	if err != nil {
		return err
	}

	poolSize := svg2pdf.ResolvePoolSize(cfg.Render.Workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := newPool(poolSize, opts...)
	defer pool.Close()

	// Convert files
	results := convertBatch(ctx, pool, files, explicitPage)

	// Print warnings and per-file results
	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)

	if cfg.Output.NoMerge {
		if failedCount > 0 {
			return batchError(results, failedCount)
		}
		return nil
	}

	// Merge successful pages in input order
	pages := successfulPages(results)
	if len(pages) == 0 {
		return batchError(results, failedCount)
	}

	merged, err := svg2pdf.MergePages(pages)
	if err != nil {
		return fmt.Errorf("merging pages: %w", err)
	}

	mergedPath := resolveMergedPath(files, outputDir, cfg.MergedName())
	if err := os.MkdirAll(filepath.Dir(mergedPath), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteMerged, err)
	}
	if err := fileutil.AtomicWriteFile(mergedPath, merged, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteMerged, err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Merged %d page(s) into %s\n", len(pages), mergedPath)
	}

	if !cfg.KeepSingles() {
		removeSingles(results, env)
	}

	if failedCount > 0 {
		return batchError(results, failedCount)
	}
	return nil
}

// mergeFlagsIntoConfig merges CLI flags into config. CLI values override config values.
func mergeFlagsIntoConfig(flags *convertFlags, cfg *config.Config) {
	if flags.render.backend != "" {
		cfg.Render.Backend = flags.render.backend
	}
	if flags.render.workers > 0 {
		cfg.Render.Workers = flags.render.workers
	}
	if flags.render.timeout != "" {
		cfg.Render.Timeout = flags.render.timeout
	}
	if flags.merge.mergedName != "" {
		cfg.Output.MergedName = flags.merge.mergedName
	}
	if flags.merge.noMerge {
		cfg.Output.NoMerge = true
	}
	if flags.merge.keepSinglesSet {
		keep := flags.merge.keepSingles
		cfg.Output.KeepSingles = &keep
	}
}

// converterOptions translates the merged config into library options.
func converterOptions(cfg *config.Config) ([]svg2pdf.Option, error) {
	opts := []svg2pdf.Option{svg2pdf.WithBackend(backendName(cfg))}

	if cfg.Render.Timeout != "" {
		d, err := time.ParseDuration(cfg.Render.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: render.timeout %q", config.ErrInvalidValue, cfg.Render.Timeout)
		}
		opts = append(opts, svg2pdf.WithTimeout(d))
	}

	if cfg.Page.Width > 0 && cfg.Page.Height > 0 {
		opts = append(opts, svg2pdf.WithDefaultPageSize(svg2pdf.PageSize{
			Width:  cfg.Page.Width,
			Height: cfg.Page.Height,
		}))
	}

	return opts, nil
}

// backendName maps the config backend to a library backend name.
func backendName(cfg *config.Config) string {
	if cfg.Render.Backend == config.BackendChrome {
		return svg2pdf.BackendChrome
	}
	return svg2pdf.BackendRaster
}

// explicitPageSize builds the forced page size from flags, if any.
// Forcing a size overrides each document's intrinsic dimensions.
func explicitPageSize(flags *convertFlags) (*svg2pdf.PageSize, error) {
	w, h := flags.page.width, flags.page.height
	if w == 0 && h == 0 {
		return nil, nil
	}
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidPageFlags
	}
	return &svg2pdf.PageSize{Width: w, Height: h}, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > svg2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, svg2pdf.MaxPoolSize)
	}
	return nil
}

// successfulPages collects rendered pages in input order, skipping failures.
func successfulPages(results []ConversionResult) []svg2pdf.RenderedPage {
	pages := make([]svg2pdf.RenderedPage, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		pages = append(pages, svg2pdf.RenderedPage{
			SourcePath: r.InputPath,
			Page:       r.Page,
			PDF:        r.PDF,
		})
	}
	return pages
}

// batchError summarizes per-file failures, wrapping the first underlying
// error so the exit code reflects the failure class.
func batchError(results []ConversionResult, failedCount int) error {
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%d conversion(s) failed: %w", failedCount, r.Err)
		}
	}
	return fmt.Errorf("%d conversion(s) failed", failedCount)
}

// removeSingles deletes per-file PDFs after a successful merge.
func removeSingles(results []ConversionResult, env *Environment) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := os.Remove(r.OutputPath); err != nil {
			fmt.Fprintf(env.Stderr, "WARNING could not remove %s: %v\n", r.OutputPath, err)
		}
	}
}

// printResults outputs warnings and conversion results using the environment writers.
// Returns the number of failed conversions.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		for _, w := range r.Warnings {
			fmt.Fprintf(env.Stderr, "WARNING %s\n", w)
		}

		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
