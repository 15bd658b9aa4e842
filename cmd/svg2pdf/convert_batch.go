package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	svg2pdf "github.com/alnah/go-svg2pdf"
)

// convertBatch processes files concurrently using the converter pool.
// Results are indexed by input position, so completion timing never
// affects the order pages are merged in.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, page *svg2pdf.PageSize) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed; fail the worker's share of jobs.
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath:  files[idx].InputPath,
						OutputPath: files[idx].OutputPath,
						Err:        err,
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath:  files[idx].InputPath,
						OutputPath: files[idx].OutputPath,
						Err:        ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], page)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
// The rendered bytes are kept in the result for the merge step.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, page *svg2pdf.PageSize) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadSVG, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := conv.Convert(ctx, svg2pdf.Input{
		SVG:        string(content),
		SourcePath: f.InputPath,
		Page:       page,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	result.PDF = res.PDF
	result.Page = res.Page
	result.Warnings = res.Warnings

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.PDF, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePDF, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}
