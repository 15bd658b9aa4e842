package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds the SVG files to convert. A directory is scanned
// non-recursively and entries are ordered lexically by filename, so the
// merged document's page order is deterministic and independent of
// rendering completion timing.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateSVGExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToConvert{{
			InputPath:  inputPath,
			OutputPath: resolveOutputPath(inputPath, outputDir),
		}}, nil
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, err
	}

	var files []FileToConvert
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".svg") {
			continue
		}
		path := filepath.Join(inputPath, e.Name())
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i].InputPath) < filepath.Base(files[j].InputPath)
	})

	return files, nil
}

// resolveOutputPath determines the PDF output path for an SVG file.
func resolveOutputPath(inputPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}
	return filepath.Join(outputDir, base+".pdf")
}

// resolveMergedPath determines where the merged document is written:
// the output directory if given, otherwise next to the inputs.
func resolveMergedPath(files []FileToConvert, outputDir, mergedName string) string {
	if outputDir != "" {
		return filepath.Join(outputDir, mergedName)
	}
	if len(files) > 0 {
		return filepath.Join(filepath.Dir(files[0].OutputPath), mergedName)
	}
	return mergedName
}

// validateSVGExtension checks that the file has a .svg extension.
func validateSVGExtension(path string) error {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".svg") {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}
