package main

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f, positional, err := parseConvertFlags([]string{"input-dir"})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		if len(positional) != 1 || positional[0] != "input-dir" {
			t.Errorf("positional = %v, want [input-dir]", positional)
		}
		if f.render.backend != "" || f.render.workers != 0 || f.output != "" {
			t.Errorf("defaults not zero: %+v", f)
		}
		if !f.merge.keepSingles {
			t.Error("keep-singles default = false, want true")
		}
		if f.merge.keepSinglesSet {
			t.Error("keepSinglesSet = true without the flag being given")
		}
	})

	t.Run("long flags", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseConvertFlags([]string{
			"--output", "out",
			"--backend", "chrome",
			"--timeout", "2m",
			"--workers", "4",
			"--page-width", "595",
			"--page-height", "842",
			"--merged-name", "book.pdf",
			"--no-merge",
			"--quiet",
			"dir",
		})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		if f.output != "out" {
			t.Errorf("output = %q, want out", f.output)
		}
		if f.render.backend != "chrome" || f.render.timeout != "2m" || f.render.workers != 4 {
			t.Errorf("render flags = %+v", f.render)
		}
		if f.page.width != 595 || f.page.height != 842 {
			t.Errorf("page flags = %+v", f.page)
		}
		if f.merge.mergedName != "book.pdf" || !f.merge.noMerge {
			t.Errorf("merge flags = %+v", f.merge)
		}
		if !f.common.quiet {
			t.Error("quiet = false, want true")
		}
	})

	t.Run("shorthands", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseConvertFlags([]string{"-o", "out", "-b", "raster", "-t", "45s", "-w", "2", "-q", "-c", "custom", "dir"})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		if f.output != "out" || f.render.backend != "raster" || f.render.timeout != "45s" ||
			f.render.workers != 2 || !f.common.quiet || f.common.config != "custom" {
			t.Errorf("shorthand flags = %+v", f)
		}
	})

	t.Run("keep-singles explicitly disabled", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseConvertFlags([]string{"--keep-singles=false", "dir"})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		if f.merge.keepSingles {
			t.Error("keepSingles = true, want false")
		}
		if !f.merge.keepSinglesSet {
			t.Error("keepSinglesSet = false, want true for an explicit flag")
		}
	})

	t.Run("keep-singles explicitly enabled", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseConvertFlags([]string{"--keep-singles=true", "dir"})
		if err != nil {
			t.Fatalf("parseConvertFlags() error = %v", err)
		}
		if !f.merge.keepSingles || !f.merge.keepSinglesSet {
			t.Errorf("merge flags = %+v, want keepSingles and keepSinglesSet true", f.merge)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		if _, _, err := parseConvertFlags([]string{"--frobnicate"}); err == nil {
			t.Error("parseConvertFlags() expected error for unknown flag")
		}
	})
}
