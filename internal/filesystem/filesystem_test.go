package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCalculateFileHashKnownVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fs := NewFileSystemModule()
	got, err := fs.CalculateFileHash(path, SHA256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCalculateFileHashUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, []byte("x"), 0o644)

	fs := NewFileSystemModule()
	if _, err := fs.CalculateFileHash(path, HashType("crc32")); err == nil {
		t.Fatal("expected an error for an unsupported hash type")
	}
}

func TestVerifyChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	fs := NewFileSystemModule()
	ok, err := fs.VerifyChecksum(path, "not-the-real-hash", SHA256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected a mismatched checksum to fail verification")
	}
}

func TestScanDirectoryFlagsSuspiciousName(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "backdoor.sh"), []byte("echo hi"), 0o644)

	fs := NewFileSystemModule()
	results, err := fs.ScanDirectory(dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one finding for a suspiciously named executable")
	}
}

func TestGetFileInfoIncludesHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	fs := NewFileSystemModule()
	info, err := fs.GetFileInfo(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := info["sha256"]; !ok {
		t.Error("expected GetFileInfo to include a sha256 field for a regular file")
	}
}
