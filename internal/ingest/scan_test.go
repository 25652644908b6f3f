package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "report.pdf")
	touch(t, root, "sub/photo.JPG")
	touch(t, root, "sub/notes.txt")
	touch(t, root, "archive.zip")        // unsupported
	touch(t, root, ".hidden/secret.pdf") // hidden dir
	touch(t, root, ".DS_Store")          // hidden file

	keys, stats, err := ScanDirectory(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := map[string]bool{
		"report.pdf":    true,
		"sub/photo.JPG": true,
		"sub/notes.txt": true,
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
	if stats.Matched != 3 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	if _, _, err := ScanDirectory("  "); err == nil {
		t.Error("blank root must error")
	}
}
