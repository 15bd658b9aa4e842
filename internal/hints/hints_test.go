package hints

// Notes:
// - Tests in this file manipulate environment variables and the IsInContainer
//   hook, so they use the internal package (not hints_test) and do not run
//   in parallel.

import (
	"strings"
	"testing"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
		t.Setenv(key, "")
	}
}

func stubContainer(t *testing.T, inContainer bool) {
	t.Helper()
	original := IsInContainer
	IsInContainer = func() bool { return inContainer }
	t.Cleanup(func() { IsInContainer = original })
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Chrome backend connection hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	t.Run("plain environment suggests raster fallback", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, false)

		hint := ForBrowserConnect()
		if !strings.Contains(hint, "--backend raster") {
			t.Errorf("hint = %q, want mention of --backend raster", hint)
		}
		if strings.Contains(hint, "ROD_NO_SANDBOX") {
			t.Errorf("hint = %q, should not suggest ROD_NO_SANDBOX outside CI/Docker", hint)
		}
	})

	t.Run("CI environment suggests sandbox flag", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, false)
		t.Setenv("CI", "true")

		hint := ForBrowserConnect()
		if !strings.Contains(hint, "ROD_NO_SANDBOX=1") {
			t.Errorf("hint = %q, want ROD_NO_SANDBOX suggestion in CI", hint)
		}
	})

	t.Run("container suggests sandbox flag", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, true)

		hint := ForBrowserConnect()
		if !strings.Contains(hint, "ROD_NO_SANDBOX=1") {
			t.Errorf("hint = %q, want ROD_NO_SANDBOX suggestion in container", hint)
		}
	})

	t.Run("sandbox already disabled is not re-suggested", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, true)
		t.Setenv("ROD_NO_SANDBOX", "1")

		hint := ForBrowserConnect()
		if strings.Contains(hint, "ROD_NO_SANDBOX=1 for") {
			t.Errorf("hint = %q, should not re-suggest ROD_NO_SANDBOX", hint)
		}
	})

	t.Run("missing browser binary suggests ROD_BROWSER_BIN", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, false)

		hint := ForBrowserConnect()
		if !strings.Contains(hint, "ROD_BROWSER_BIN") {
			t.Errorf("hint = %q, want ROD_BROWSER_BIN suggestion", hint)
		}
	})

	t.Run("browser binary set is not suggested", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, false)
		t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

		hint := ForBrowserConnect()
		if strings.Contains(hint, "set ROD_BROWSER_BIN") {
			t.Errorf("hint = %q, should not suggest ROD_BROWSER_BIN when set", hint)
		}
	})

	t.Run("hint formatting", func(t *testing.T) {
		clearCIEnv(t)
		stubContainer(t, false)

		hint := ForBrowserConnect()
		if !strings.HasPrefix(hint, "\n  hint: ") {
			t.Errorf("hint = %q, want prefix %q", hint, "\n  hint: ")
		}
	})
}

// ---------------------------------------------------------------------------
// TestForTimeout - Timeout hints
// ---------------------------------------------------------------------------

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()
	if !strings.Contains(hint, "--timeout") {
		t.Errorf("hint = %q, want mention of --timeout", hint)
	}
}

// ---------------------------------------------------------------------------
// TestForConfigNotFound - Config resolution hints
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name          string
		searchedPaths []string
		wantContains  []string
		wantAbsent    []string
	}{
		{
			name:          "no searched paths",
			searchedPaths: nil,
			wantContains:  []string{"--config"},
			wantAbsent:    []string{"or create"},
		},
		{
			name:          "user config dir path is suggested",
			searchedPaths: []string{"./custom.yaml", "/home/u/.config/go-svg2pdf/custom.yaml"},
			wantContains:  []string{"--config", "or create /home/u/.config/go-svg2pdf/custom.yaml"},
		},
		{
			name:          "unrelated paths are not suggested",
			searchedPaths: []string{"./custom.yaml", "/etc/custom.yaml"},
			wantContains:  []string{"--config"},
			wantAbsent:    []string{"or create"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.searchedPaths)
			for _, want := range tt.wantContains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint = %q, want containing %q", hint, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(hint, absent) {
					t.Errorf("hint = %q, should not contain %q", hint, absent)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestForCorruptPage / TestForNoInput / TestForOutputDirectory
// ---------------------------------------------------------------------------

func TestForCorruptPage(t *testing.T) {
	hint := ForCorruptPage()
	if !strings.Contains(hint, "re-render") {
		t.Errorf("hint = %q, want mention of re-rendering", hint)
	}
}

func TestForNoInput(t *testing.T) {
	hint := ForNoInput()
	if !strings.Contains(hint, ".svg") {
		t.Errorf("hint = %q, want mention of .svg files", hint)
	}
}

func TestForOutputDirectory(t *testing.T) {
	hint := ForOutputDirectory()
	if !strings.Contains(hint, "writable") {
		t.Errorf("hint = %q, want mention of writability", hint)
	}
}

// ---------------------------------------------------------------------------
// TestFormat - Hint formatting helpers
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	if got := format(""); got != "" {
		t.Errorf("format(%q) = %q, want empty", "", got)
	}
	if got := format("do the thing"); got != "\n  hint: do the thing" {
		t.Errorf("format() = %q, want %q", got, "\n  hint: do the thing")
	}
	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q, want %q", got, "\n  hint: a; b")
	}
}
