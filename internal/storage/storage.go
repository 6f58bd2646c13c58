package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths outside the public prefix.
var ErrInvalidPath = errors.New("storage: invalid path")

// Storage stores uploaded files and hands back their public path.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, publicPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, publicPath string) error
}

// objectName builds "<uuid>-<base name>" so uploads never collide.
func objectName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return uuid.NewString() + "-" + base
}

// keyFromPublicPath strips prefix and rejects traversal.
func keyFromPublicPath(prefix, publicPath string) (string, error) {
	p := strings.TrimPrefix(publicPath, strings.TrimRight(prefix, "/")+"/")
	if p == publicPath || p == "" || strings.Contains(p, "/") || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	return p, nil
}

func publicPath(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + key
}
