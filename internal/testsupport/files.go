package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteStory writes a story text file under dir and returns its path.
func WriteStory(t testing.TB, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write story %s: %v", path, err)
	}
	return path
}

// WriteFile creates a file with placeholder bytes, for media-path fixtures.
func WriteFile(t testing.TB, path string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
	return path
}
