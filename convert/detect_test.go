package convert

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectSource(t *testing.T) {
	dir := t.TempDir()

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	tests := []struct {
		name    string
		file    string
		content []byte
		want    sourceKind
	}{
		{"page", "index.jay-html", []byte("<html><body></body></html>"), kindPage},
		{"page with bom", "bom.jay-html", []byte("\xEF\xBB\xBF\n  <html></html>"), kindPage},
		{"page upper case", "INDEX.JAY-HTML", []byte("<html></html>"), kindPage},
		{"document", "doc.json", []byte(`{"schemaVersion":"1.0.0"}`), kindDocument},
		{"document leading space", "spaced.json", []byte("\n\t {}"), kindDocument},
		{"array is not document", "array.json", []byte(`[1,2]`), kindUnknown},
		{"text is not page", "text.jay-html", []byte("plain text"), kindUnknown},
		{"empty page", "empty.jay-html", nil, kindUnknown},
		{"binary page", "image.jay-html", png, kindUnknown},
		{"other extension", "notes.txt", []byte("<html></html>"), kindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := detectSource(path)
			if err != nil {
				t.Fatalf("detectSource() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("detectSource() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectSource_NonExistent(t *testing.T) {
	if _, err := detectSource("/nonexistent/page.jay-html"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	// extension is checked first, nothing is opened
	if kind, err := detectSource("/nonexistent/page.txt"); err != nil || kind != kindUnknown {
		t.Errorf("detectSource() = %v, %v", kind, err)
	}
}

func TestSourceKind(t *testing.T) {
	if kindPage.String() != "jay-html" || kindDocument.String() != "json" || kindUnknown.String() != "unknown" {
		t.Error("unexpected kind names")
	}
	if kindPage.ext() != pageExt || kindDocument.ext() != documentExt {
		t.Error("unexpected kind extensions")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown kind extension")
		}
	}()
	_ = kindUnknown.ext()
}
