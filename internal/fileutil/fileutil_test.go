package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-staticmd/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic document writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "static-page-modern.html")

	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("<!DOCTYPE html>"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}
	if string(got) != "<!DOCTYPE html>" {
		t.Errorf("file content = %q, want replaced content", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.html")
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0644); err == nil {
		t.Error("WriteFileAtomic() into a missing directory should fail")
	}
}

// ---------------------------------------------------------------------------
// TestReadTextFile - Bounded reads
// ---------------------------------------------------------------------------

func TestReadTextFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "header.md")
	if err := os.WriteFile(path, []byte("**Draft**"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	got, err := fileutil.ReadTextFile(path, 64)
	if err != nil || got != "**Draft**" {
		t.Errorf("ReadTextFile() = %q, %v; want content", got, err)
	}

	if _, err := fileutil.ReadTextFile(path, 4); !errors.Is(err, fileutil.ErrFileTooLarge) {
		t.Errorf("ReadTextFile() over limit error = %v, want ErrFileTooLarge", err)
	}

	if _, err := fileutil.ReadTextFile(filepath.Join(dir, "absent.md"), 64); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadTextFile() missing error = %v, want os.ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Path probes
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantFile bool
		wantDir  bool
	}{
		{"existing file", testFile, true, false},
		{"directory", tempDir, false, true},
		{"nonexistent path", filepath.Join(tempDir, "nonexistent"), false, false},
		{"empty path", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantFile {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}
