package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileKV stores each key as <dir>/<key>.json.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	const op = "NewFileKV"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, WrapStoreError(op, err, "creating store directory "+dir)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "FileKV.Get"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, WrapStoreError(op, err, "")
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapStoreError(op, err, p)
	}
	return data, nil
}

// Put writes to a temp file in the same directory and renames it over the
// target so a crash never leaves a half-written slot.
func (f *FileKV) Put(ctx context.Context, key string, value []byte) error {
	const op = "FileKV.Put"

	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return WrapStoreError(op, err, "")
	}

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return WrapStoreError(op, err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return WrapStoreError(op, err, "writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return WrapStoreError(op, err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return WrapStoreError(op, err, "closing temp file")
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return WrapStoreError(op, err, "replacing "+p)
	}
	return nil
}

func (f *FileKV) Close() error { return nil }
