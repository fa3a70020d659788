package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFS is a Backend rooted at a directory on the local filesystem.
type LocalFS struct {
	root string
}

func NewLocalFS(root string) (*LocalFS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive root: %w", err)
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

func (l *LocalFS) Put(ctx context.Context, path string, data []byte) error {
	target := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	return os.WriteFile(target, data, 0o644)
}

func (l *LocalFS) Get(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.resolve(path))
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.Walk(l.resolve(prefix), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, rerr := filepath.Rel(l.root, path)
			if rerr != nil {
				return rerr
			}
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return paths, err
}

func (l *LocalFS) Delete(ctx context.Context, path string) error {
	return os.Remove(l.resolve(path))
}

func (l *LocalFS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
