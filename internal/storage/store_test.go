package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestStore() *Store {
	return New(afero.NewMemMapFs(), "/data/uploads", "/uploads")
}

func TestSaveProducesManagedPath(t *testing.T) {
	s := newTestStore()
	ref, err := s.Save(context.Background(), "blogs", "photo.PNG", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/blogs/") {
		t.Fatalf("ref %q lacks /uploads/blogs/ prefix", ref)
	}
	if !strings.HasSuffix(ref, ".png") {
		t.Fatalf("ref %q should keep a lowercased extension", ref)
	}
	exists, err := s.Exists(ref)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("saved file should exist")
	}
}

func TestSaveStripsSuspiciousExtension(t *testing.T) {
	s := newTestStore()
	ref, err := s.Save(context.Background(), "blogs", "x.p!g", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(ref, "!") || strings.Contains(strings.TrimPrefix(ref, "/uploads/blogs/"), ".") {
		t.Fatalf("extension should have been dropped, got %q", ref)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestStore()
	ref, err := s.Save(context.Background(), "services", "icon.svg", strings.NewReader("icon"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(context.Background(), ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(context.Background(), ref); err != nil {
		t.Fatalf("second remove should succeed: %v", err)
	}
	exists, _ := s.Exists(ref)
	if exists {
		t.Fatal("file should be gone")
	}
}

func TestRemoveIgnoresExternalURLs(t *testing.T) {
	s := newTestStore()
	if err := s.Remove(context.Background(), "https://cdn.example.com/a.png"); err != nil {
		t.Fatalf("external url remove should be a no-op: %v", err)
	}
}

func TestManaged(t *testing.T) {
	s := newTestStore()
	if !s.Managed("/uploads/blogs/x.png") {
		t.Fatal("expected managed")
	}
	if s.Managed("https://example.com/uploads/blogs/x.png") {
		t.Fatal("urls are not managed")
	}
	if s.Managed("/uploads") {
		t.Fatal("bare prefix is not managed")
	}
}

func TestRemoveRejectsTraversal(t *testing.T) {
	s := newTestStore()
	if err := s.Remove(context.Background(), "/uploads/../etc/passwd"); err == nil {
		t.Fatal("expected error for traversal path")
	}
}
