package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func makeZip(t *testing.T, files map[string]string, order []string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, n := range order {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", n, err)
		}
		if _, err := fw.Write([]byte(files[n])); err != nil {
			t.Fatalf("Failed to write content for %s: %v", n, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return name
}

func all(string) bool { return true }

func TestWalk(t *testing.T) {
	files := map[string]string{
		"pages/index.jay-html":     "<html>index</html>",
		"pages/shop/cart.jay-html": "<html>cart</html>",
		"pages-old/old.jay-html":   "<html>old</html>",
		"docs/index.json":          "{}",
		"README":                   "readme",
	}
	order := []string{"pages/index.jay-html", "pages/shop/cart.jay-html", "pages-old/old.jay-html", "docs/index.json", "README"}
	name := makeZip(t, files, order)

	tests := []struct {
		name   string
		prefix string
		match  func(string) bool
		want   []string
	}{
		{"everything", "", all, order},
		{"directory prefix", "pages", all, []string{"pages/index.jay-html", "pages/shop/cart.jay-html"}},
		{"trailing slash", "pages/", all, []string{"pages/index.jay-html", "pages/shop/cart.jay-html"}},
		{"single file", "docs/index.json", all, []string{"docs/index.json"}},
		{"no match", "assets", all, nil},
		{"match filter", "", func(n string) bool { return strings.HasSuffix(n, ".json") }, []string{"docs/index.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := Walk(name, tt.prefix, tt.match, func(n string, r io.Reader) error {
				data, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				if string(data) != files[n] {
					t.Errorf("content of %s = %q", n, data)
				}
				visited = append(visited, n)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited %v, want %v", visited, tt.want)
			}
		})
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	name := makeZip(t, map[string]string{"a": "1", "b": "2"}, []string{"a", "b"})

	stop := errors.New("stop")
	count := 0
	err := Walk(name, "", all, func(string, io.Reader) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if count != 1 {
		t.Errorf("walkFn called %d times, want 1", count)
	}
}

func TestWalk_UnsafePath(t *testing.T) {
	name := makeZip(t, map[string]string{"ok.json": "{}", "../evil.json": "{}"}, []string{"ok.json", "../evil.json"})

	visited := 0
	err := Walk(name, "", all, func(string, io.Reader) error {
		visited++
		return nil
	})
	if err == nil {
		t.Error("expected error for archive with path traversal")
	}
	if visited > 1 {
		t.Errorf("unsafe entry was visited")
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	if err := Walk("/nonexistent/bundle.zip", "", all, nil); err == nil {
		t.Error("expected error for nonexistent archive")
	}

	bad := filepath.Join(t.TempDir(), "bad.zip")
	if err := os.WriteFile(bad, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(bad, "", all, nil); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestIsArchive(t *testing.T) {
	name := makeZip(t, map[string]string{"a.json": "{}"}, []string{"a.json"})
	if ok, err := IsArchive(name); err != nil || !ok {
		t.Errorf("IsArchive(zip) = %v, %v", ok, err)
	}

	text := filepath.Join(t.TempDir(), "page.jay-html")
	if err := os.WriteFile(text, []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if ok, err := IsArchive(text); err != nil || ok {
		t.Errorf("IsArchive(text) = %v, %v", ok, err)
	}

	if _, err := IsArchive("/nonexistent"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestIsSafePath(t *testing.T) {
	tests := map[string]bool{
		"pages/index.jay-html": true,
		"a/b/../c":             false,
		"/abs/path":            false,
		`\windows\path`:        false,
		"..":                   false,
		"dots..in.name":        true,
	}
	for in, want := range tests {
		if got := isSafePath(in); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", in, got, want)
		}
	}
}
