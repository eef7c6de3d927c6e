package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempSite(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempSite(t)
	content := []byte(`{"sections":{}}`)
	if err := s.Write("site.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("site.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempSite(t)
	if err := s.Write("assets/a/b.png", []byte("png")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ok, err := s.Exists("assets/a/b.png")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
}

func TestExists_MissingAndDir(t *testing.T) {
	s := tempSite(t)
	if ok, err := s.Exists("nope.json"); err != nil || ok {
		t.Errorf("missing file: Exists = %v, %v", ok, err)
	}
	_ = os.MkdirAll(filepath.Join(s.Root(), "dir"), 0o755)
	if ok, _ := s.Exists("dir"); ok {
		t.Error("directory should not count as a file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempSite(t)
	for _, p := range []string{"../../etc/passwd", "../outside.json", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("site.json", []byte("original"))
	if err := s.Write("site.json", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("site.json")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".sitewright-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "sitewright-test-*")
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
