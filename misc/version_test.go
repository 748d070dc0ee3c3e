package misc

import (
	"strings"
	"testing"
)

func TestGetAppName(t *testing.T) {
	if got := GetAppName(); got != "fjc" {
		t.Errorf("GetAppName() = %q", got)
	}
}

func TestGetVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "1.2.3"
	if got := GetVersion(); got != "1.2.3" {
		t.Errorf("GetVersion() = %q, want ldflags value", got)
	}
	version = ""
	if got := GetVersion(); got == "" {
		t.Error("GetVersion() is empty without ldflags")
	}
}

func TestGetGitHash(t *testing.T) {
	old := gitHash
	t.Cleanup(func() { gitHash = old })

	gitHash = "abcdef"
	if got := GetGitHash(); got != "abcdef" {
		t.Errorf("GetGitHash() = %q", got)
	}
	gitHash = ""
	if got := GetGitHash(); got == "" || len(got) > 8 && got != "unknown" {
		t.Errorf("GetGitHash() = %q", got)
	}
}

func TestTempPattern(t *testing.T) {
	tests := []struct {
		kind, ext, want string
	}{
		{"", ".log", "fjc.*.log"},
		{"report", ".zip", "fjc-report.*.zip"},
		{"panic", ".log", "fjc-panic.*.log"},
	}
	for _, tt := range tests {
		got := TempPattern(tt.kind, tt.ext)
		if got != tt.want {
			t.Errorf("TempPattern(%q, %q) = %q, want %q", tt.kind, tt.ext, got, tt.want)
		}
		if !strings.Contains(got, "*") {
			t.Errorf("pattern %q has no placeholder", got)
		}
	}
}
