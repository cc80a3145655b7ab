package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMD5Digest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := MD5Digest(path)
	if err != nil {
		t.Fatal(err)
	}
	if digest != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Fatalf("digest = %q", digest)
	}
}

func TestMD5Digest_MissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := MD5Digest(filepath.Join(dir, "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFileCreatesDestinationDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "out", "N_123456", "N_123456_01.mkv")

	if err := os.WriteFile(src, []byte("segment"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if Exists(src) {
		t.Fatal("source should be gone after move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "segment" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sized.bin")
	if err := os.WriteFile(path, make([]byte, 1234), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := FileSize(path); got != 1234 {
		t.Fatalf("size = %d", got)
	}
	if got := FileSize(filepath.Join(dir, "missing")); got != 0 {
		t.Fatalf("missing file size = %d, want 0", got)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}
