// Package config loads and validates svg2pdf configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-svg2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Bounds for validated numeric fields.
const (
	MaxWorkers    = 32
	MaxPagePoints = 14400 // PDF implementation limit (200in at 72dpi)
)

// Render backend names accepted in config and flags.
const (
	BackendRaster = "raster"
	BackendChrome = "chrome"
)

// Config holds all configuration for batch conversion.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Page   PageConfig   `yaml:"page"`
	Render RenderConfig `yaml:"render"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir  string `yaml:"defaultDir"`  // Default output directory (empty = same as source)
	MergedName  string `yaml:"mergedName"`  // Merged file name (default: merged.pdf)
	KeepSingles *bool  `yaml:"keepSingles"` // Keep per-file PDFs after merging (default: true)
	NoMerge     bool   `yaml:"noMerge"`     // Skip the merge step entirely
}

// PageConfig defines the fallback page size, in points, used when an SVG
// declares neither dimensions nor a viewBox.
type PageConfig struct {
	Width  float64 `yaml:"width"`  // default: 612 (US Letter)
	Height float64 `yaml:"height"` // default: 792
}

// RenderConfig defines rendering options.
type RenderConfig struct {
	Backend string `yaml:"backend"` // "raster" (default) or "chrome"
	Workers int    `yaml:"workers"` // parallel workers (0 = auto)
	Timeout string `yaml:"timeout"` // per-file render timeout, e.g. "30s"
}

// DefaultConfig returns the neutral configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{MergedName: "merged.pdf"},
		Page:   PageConfig{Width: 612, Height: 792},
		Render: RenderConfig{Backend: BackendRaster},
	}
}

// Validate checks value ranges. Called automatically by LoadConfig, but
// available for consumers who construct Config manually.
func (c *Config) Validate() error {
	switch c.Render.Backend {
	case "", BackendRaster, BackendChrome:
	default:
		return fmt.Errorf("%w: render.backend %q (must be %s or %s)",
			ErrInvalidValue, c.Render.Backend, BackendRaster, BackendChrome)
	}

	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers %d (must be 0-%d)", ErrInvalidValue, c.Render.Workers, MaxWorkers)
	}

	if c.Page.Width < 0 || c.Page.Width > MaxPagePoints {
		return fmt.Errorf("%w: page.width %.2f (must be 0-%d)", ErrInvalidValue, c.Page.Width, MaxPagePoints)
	}
	if c.Page.Height < 0 || c.Page.Height > MaxPagePoints {
		return fmt.Errorf("%w: page.height %.2f (must be 0-%d)", ErrInvalidValue, c.Page.Height, MaxPagePoints)
	}

	if name := c.Output.MergedName; name != "" {
		if strings.ContainsAny(name, "/\\\x00") {
			return fmt.Errorf("%w: output.mergedName %q must be a bare file name", ErrInvalidValue, name)
		}
	}

	return nil
}

// KeepSingles reports whether per-file PDFs survive a successful merge.
// Defaults to true; the upstream tool deleted them, which loses outputs
// the caller may want.
func (c *Config) KeepSingles() bool {
	if c.Output.KeepSingles == nil {
		return true
	}
	return *c.Output.KeepSingles
}

// MergedName returns the merged output file name, applying the default.
func (c *Config) MergedName() string {
	if c.Output.MergedName == "" {
		return "merged.pdf"
	}
	return c.Output.MergedName
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-svg2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-svg2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
