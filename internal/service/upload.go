package service

import (
	"context"
	"io"

	"github.com/spec-kit/sales-service/internal/storage"
)

// Upload is a file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredFile describes a saved upload as returned to clients.
type StoredFile struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func saveUpload(ctx context.Context, store storage.Storage, up *Upload) (*StoredFile, error) {
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := store.Save(ctx, up.Name, contentType, up.Body, up.Size)
	if err != nil {
		return nil, err
	}
	return &StoredFile{URL: url, Type: contentType, Name: up.Name, Size: up.Size}, nil
}
