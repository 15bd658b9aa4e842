package svg2pdf

import "testing"

// ---------------------------------------------------------------------------
// TestSandboxDisabled - Sandbox opt-out environment detection
// ---------------------------------------------------------------------------

// Note: these tests mutate the process environment via t.Setenv, so they
// do not run in parallel.

func TestSandboxDisabled(t *testing.T) {
	clearEnv := func(t *testing.T) {
		t.Setenv("ROD_NO_SANDBOX", "")
		t.Setenv("CI", "")
		t.Setenv("ROD_BROWSER_BIN", "")
	}

	tests := []struct {
		name  string
		key   string
		value string
		want  bool
	}{
		{name: "plain environment keeps sandbox", want: false},
		{name: "ROD_NO_SANDBOX opts out", key: "ROD_NO_SANDBOX", value: "1", want: true},
		{name: "CI opts out", key: "CI", value: "true", want: true},
		{name: "CI set to other value keeps sandbox", key: "CI", value: "false", want: false},
		{name: "pre-installed browser opts out", key: "ROD_BROWSER_BIN", value: "/usr/bin/chromium", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.key != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := sandboxDisabled(); got != tt.want {
				t.Errorf("sandboxDisabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
