package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage persists uploaded files and returns their public path.
type FileStorage interface {
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
}

// DiskStorage writes files below a root directory served as /uploads.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	return &DiskStorage{root: root}
}

func (s *DiskStorage) Save(_ context.Context, dir, name string, data []byte) (string, error) {
	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(target, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/uploads/" + filepath.ToSlash(filepath.Join(dir, name)), nil
}
