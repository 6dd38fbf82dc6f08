package version

import (
	"strings"
	"testing"
)

func TestCurrent_FillsRuntimeFields(t *testing.T) {
	info := Current()

	if info.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %q, want os/arch form", info.Platform)
	}
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestShort_UsesCommitForDevBuilds(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"tagged release", Info{Version: "v1.2.0", Commit: "abcdef1234"}, "v1.2.0"},
		{"dev with commit", Info{Version: "dev", Commit: "abcdef1234"}, "dev-abcdef1"},
		{"dev without commit", Info{Version: "dev", Commit: "unknown"}, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString_FormatsSingleLine(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		Commit:    "unknown",
		Date:      "2026-01-02T03:04:05Z",
		GoVersion: "go1.23.4",
		Platform:  "linux/amd64",
	}

	got := info.String()
	for _, want := range []string{"gochip8 v1.0.0", "built 2026-01-02", "go1.23.4", "linux/amd64"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
