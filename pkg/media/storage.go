// Package media stores uploaded files. The local-disk implementation keeps
// uploads under a configured base directory; paths returned are relative so
// the base can move between environments.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/config"
)

// Storage persists uploaded content and returns a serveable path.
type Storage interface {
	Save(ctx context.Context, folder, filename string, content io.Reader) (string, error)
}

type localStorage struct {
	baseDir string
}

// NewLocalStorage builds a disk-backed Storage rooted at cfg.BaseDir.
func NewLocalStorage(cfg config.MediaConfig) (Storage, error) {
	baseDir := strings.TrimSpace(cfg.BaseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("media base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

// Save writes content under baseDir/folder with a random name; the original
// filename only contributes its extension.
func (s *localStorage) Save(ctx context.Context, folder, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = sanitizeSegment(folder)
	if folder == "" {
		return "", fmt.Errorf("folder required")
	}

	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}

	name := uuid.NewString()
	if ext := safeExtension(filename); ext != "" {
		name += ext
	}

	fullPath := filepath.Join(dir, name)
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filepath.ToSlash(filepath.Join(folder, name)), nil
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	segment = strings.ReplaceAll(segment, "..", "")
	segment = strings.Trim(segment, "/\\")
	return segment
}

func safeExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ""
	}
}
