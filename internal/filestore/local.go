package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalDisk stores files under Root on the local filesystem.
type LocalDisk struct {
	Root string
}

func NewLocalDisk(root string) *LocalDisk {
	return &LocalDisk{Root: root}
}

// resolve keeps every path inside Root.
func (d *LocalDisk) resolve(path string) string {
	return filepath.Join(d.Root, filepath.Clean("/"+path))
}

func (d *LocalDisk) Store(ctx context.Context, path string, content []byte) (string, error) {
	full := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, content, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (d *LocalDisk) Delete(ctx context.Context, path string) (bool, error) {
	err := os.Remove(d.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", path, err)
	}
	return true, nil
}

func (d *LocalDisk) Move(ctx context.Context, from, to string) (bool, error) {
	src, dst := d.resolve(from), d.resolve(to)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", to, err)
	}
	err := os.Rename(src, dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("move %s to %s: %w", from, to, err)
	}
	return true, nil
}

func (d *LocalDisk) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(d.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}
