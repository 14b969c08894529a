package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "drawings"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "r-1.png", strings.NewReader("canvas")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := s.Open(context.Background(), "r-1.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "canvas" {
		t.Fatalf("unexpected body %q", body)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "drawings"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"", "../escape.png", "a/b.png", ".hidden"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Save(%q): expected ErrInvalidInput, got %v", key, err)
		}
	}
}

func TestOpenMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "nope.png"); !domain.IsKind(err, domain.ErrDrawingNotFound) {
		t.Fatalf("expected ErrDrawingNotFound, got %v", err)
	}
}
