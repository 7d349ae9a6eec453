package utils

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestResolveFiles_EmptyPatterns(t *testing.T) {
	files, err := ResolveFiles(nil, t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if files != nil {
		t.Errorf("Expected nil, got: %v", files)
	}
}

func TestResolveFiles_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	report := filepath.Join(tmpDir, "report.pdf")
	writeTestFile(t, report, "pdf")

	files, err := ResolveFiles([]string{"report.pdf"}, tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 || files[0] != report {
		t.Fatalf("Expected [%s], got: %v", report, files)
	}
}

func TestResolveFiles_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "a.txt"), "a")

	files, err := ResolveFiles([]string{"a.txt", "*.txt", filepath.Join(tmpDir, "a.txt")}, tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file, got: %v", files)
	}
}

func TestResolveFiles_DoubleStarGlob(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "docs", "a.md"), "a")
	writeTestFile(t, filepath.Join(tmpDir, "docs", "deep", "b.md"), "b")
	writeTestFile(t, filepath.Join(tmpDir, "docs", "deep", "c.txt"), "c")
	writeTestFile(t, filepath.Join(tmpDir, "docs", ".git", "d.md"), "d")

	files, err := ResolveFiles([]string{"docs/**/*.md"}, tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	sort.Strings(files)
	expected := []string{
		filepath.Join(tmpDir, "docs", "a.md"),
		filepath.Join(tmpDir, "docs", "deep", "b.md"),
	}
	if len(files) != len(expected) {
		t.Fatalf("Expected %v, got: %v", expected, files)
	}
	for i := range expected {
		if files[i] != expected[i] {
			t.Errorf("Expected %s, got: %s", expected[i], files[i])
		}
	}
}

func TestResolveFiles_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "dir", "a.txt"), "a")
	writeTestFile(t, filepath.Join(tmpDir, "dir", "sub", "b.bin"), "b")
	writeTestFile(t, filepath.Join(tmpDir, "dir", ".cache", "c"), "c")

	files, err := ResolveFiles([]string{"dir"}, tmpDir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 files, got: %v", files)
	}
}

func TestResolveFiles_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := ResolveFiles([]string{"missing.txt"}, tmpDir); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := ResolveFiles([]string{"*.nothing"}, tmpDir); err == nil {
		t.Error("Expected error when a glob matches nothing")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.pdf")

	if err := WriteFile(path, []byte("first"), false); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File was not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}

	if err := WriteFile(path, []byte("second"), false); !errors.Is(err, kerrors.ErrFileExists) {
		t.Errorf("Expected ErrFileExists when overwrite is false, got %v", err)
	}
	if err := WriteFile(path, []byte("second"), true); err != nil {
		t.Fatalf("WriteFile with overwrite failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("Expected overwritten content, got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Temporary files left behind: %v", entries)
	}
}

func TestWriteFile_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeTestFile(t, blocker, "not a directory")

	err := WriteFile(filepath.Join(blocker, "report.pdf"), []byte("data"), false)
	if err == nil {
		t.Fatal("Expected error when the parent path is a file")
	}
	if errors.Is(err, kerrors.ErrFileExists) {
		t.Errorf("Directory failure reported as ErrFileExists: %v", err)
	}
}

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", 8, "bafkreig...qa4s52zy"},
		{"short", 8, "short"},
		{"0123456789", 0, "0123456789"},
	}
	for _, tt := range tests {
		if got := Abbreviate(tt.in, tt.n); got != tt.want {
			t.Errorf("Abbreviate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
