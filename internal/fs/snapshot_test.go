package fs

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"zipsh/internal/archive"
)

func fixtureEntries() []archive.Entry {
	return []archive.Entry{
		{Name: "file1.txt", Data: []byte("Hello, World!")},
		{Name: "file2.txt", Data: []byte("This is a test file.")},
		{Name: "subdir/file3.txt", Data: []byte("Another file in a subdirectory.")},
	}
}

func TestNewSnapshotNormalizesEntries(t *testing.T) {
	snap := NewSnapshot(fixtureEntries())

	expected := []string{"/file1.txt", "/file2.txt", "/subdir/file3.txt"}
	if got := snap.Paths(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected paths %v, got %v", expected, got)
	}
	if snap.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", snap.Len())
	}

	e, ok := snap.Lookup("/subdir/file3.txt")
	if !ok {
		t.Fatal("Expected /subdir/file3.txt to exist")
	}
	if string(e.Data) != "Another file in a subdirectory." {
		t.Errorf("Unexpected payload %q", e.Data)
	}
	if e.Name() != "file3.txt" {
		t.Errorf("Expected name file3.txt, got %q", e.Name())
	}

	if _, ok := snap.Lookup("/subdir"); ok {
		t.Error("Implied directory must not become an explicit entry")
	}
}

func TestNewSnapshotFirstWriteWins(t *testing.T) {
	snap := NewSnapshot([]archive.Entry{
		{Name: "a//b.txt", Data: []byte("first")},
		{Name: "a/b.txt", Data: []byte("second")},
		{Name: `a\b.txt`, Data: []byte("third")},
	})

	if snap.Len() != 1 {
		t.Fatalf("Expected 1 entry, got %d: %v", snap.Len(), snap.Paths())
	}
	e, _ := snap.Lookup("/a/b.txt")
	if string(e.Data) != "first" {
		t.Errorf("Expected first entry to win, got %q", e.Data)
	}
}

func TestNewSnapshotDirectoryMarkers(t *testing.T) {
	snap := NewSnapshot([]archive.Entry{
		{Name: "/", Dir: true},
		{Name: "empty/", Dir: true},
		{Name: "docs/", Dir: true},
		{Name: "docs/readme.md", Data: []byte("#")},
	})

	if snap.Len() != 3 {
		t.Errorf("Expected root marker to be dropped, got %v", snap.Paths())
	}
	e, ok := snap.Lookup("/empty")
	if !ok || !e.Dir || e.Data != nil {
		t.Errorf("Expected /empty to be a directory marker, got %+v", e)
	}
	if !snap.IsDir("/empty") {
		t.Error("Expected /empty to be a directory")
	}
	if got := snap.Children("/empty"); len(got) != 0 {
		t.Errorf("Expected empty listing, got %v", got)
	}
}

func TestSnapshotChildren(t *testing.T) {
	snap := NewSnapshot([]archive.Entry{
		{Name: "a.txt"},
		{Name: "a/b/c.txt"},
		{Name: "a-b"},
		{Name: "a/d.txt"},
		{Name: "a0"},
		{Name: "z/"},
		{Name: "file"},
	})

	tests := []struct {
		cursor   string
		expected []string
	}{
		{"/", []string{"a", "a-b", "a.txt", "a0", "file", "z"}},
		{"/a", []string{"b", "d.txt"}},
		{"/a/b", []string{"c.txt"}},
		{"/file", []string{}},
		{"/missing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.cursor, func(t *testing.T) {
			got := snap.Children(tt.cursor)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSnapshotExists(t *testing.T) {
	snap := NewSnapshot(fixtureEntries())

	tests := map[string]bool{
		"/":                  true,
		"/file1.txt":         true,
		"/subdir":            true,
		"/subdir/file3.txt":  true,
		"/sub":               false,
		"/nonexistent":       false,
		"/file1.txt/nothing": false,
	}
	for p, expected := range tests {
		if got := snap.Exists(p); got != expected {
			t.Errorf("Exists(%q): expected %v, got %v", p, expected, got)
		}
	}

	if snap.IsDir("/file1.txt") {
		t.Error("Expected /file1.txt not to be a directory")
	}
	if !snap.IsDir("/subdir") {
		t.Error("Expected implied /subdir to be a directory")
	}
}

func TestEmptySnapshot(t *testing.T) {
	snap := NewSnapshot(nil)
	if !snap.Exists("/") {
		t.Error("Root must always exist")
	}
	if got := snap.Children("/"); len(got) != 0 {
		t.Errorf("Expected empty root listing, got %v", got)
	}
}

func writeTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.zip")
	writeTestZip(t, path, map[string]string{
		"file1.txt":        "Hello, World!",
		"subdir/file3.txt": "Another file in a subdirectory.",
	})

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if snap.Source() != path {
		t.Errorf("Expected source %q, got %q", path, snap.Source())
	}
	if got := snap.Children("/"); !reflect.DeepEqual(got, []string{"file1.txt", "subdir"}) {
		t.Errorf("Unexpected root listing %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.zip")
	if err := os.WriteFile(garbage, []byte("PK\x03\x04not really"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.zip"), garbage} {
		_, err := Load(path)
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("Expected LoadError for %s, got %v", path, err)
		}
		if loadErr.Archive != path {
			t.Errorf("Expected archive %q, got %q", path, loadErr.Archive)
		}
	}
}
