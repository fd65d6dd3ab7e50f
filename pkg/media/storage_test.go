package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajeitai/marketplace-backend/pkg/config"
)

func TestSaveWritesFile(t *testing.T) {
	baseDir := t.TempDir()
	storage, err := NewLocalStorage(config.MediaConfig{BaseDir: baseDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := storage.Save(context.Background(), "conclusoes", "foto.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(path, "conclusoes/") || !strings.HasSuffix(path, ".jpg") {
		t.Fatalf("unexpected path %q", path)
	}

	content, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(path)))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(content) != "image-bytes" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestSaveStripsUnknownExtension(t *testing.T) {
	storage, err := NewLocalStorage(config.MediaConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, err := storage.Save(context.Background(), "conclusoes", "script.sh", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(path, ".sh") {
		t.Fatalf("dangerous extension should be dropped, got %q", path)
	}
}

func TestSaveRejectsEmptyFolder(t *testing.T) {
	storage, err := NewLocalStorage(config.MediaConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := storage.Save(context.Background(), "../..", "a.png", strings.NewReader("x")); err == nil {
		t.Fatalf("traversal folder should be rejected")
	}
}
