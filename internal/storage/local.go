package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage writes uploads to a directory on disk.
type LocalStorage struct {
	dir    string
	prefix string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir, prefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, prefix: prefix}, nil
}

func (s *LocalStorage) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	key := objectName(name)
	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return publicPath(s.prefix, key), nil
}

func (s *LocalStorage) Open(_ context.Context, p string) (io.ReadCloser, error) {
	key, err := keyFromPublicPath(s.prefix, p)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, key))
}

// Delete is a no-op for files that are already gone.
func (s *LocalStorage) Delete(_ context.Context, p string) error {
	key, err := keyFromPublicPath(s.prefix, p)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ping checks that the upload directory is still present.
func (s *LocalStorage) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New(s.dir + " is not a directory")
	}
	return nil
}
