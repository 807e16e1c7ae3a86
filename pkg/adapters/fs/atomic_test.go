package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.json")

	if err := writeFileAtomic(target, []byte("first"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeFileAtomic(target, []byte("second"), 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("expected %q, got %q", "second", data)
	}

	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), tempPrefix) {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestMoveReplacing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "incoming")
	target := filepath.Join(dir, "current")

	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(source, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := moveReplacing(source, target); err != nil {
		t.Fatalf("move: %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "new" {
		t.Errorf("expected target replaced, got %q", data)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Error("source still present after move")
	}
}
