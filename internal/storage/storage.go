package storage

import (
	"context"
	"io"
)

// Service persists rendered images and resolves their public URLs.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
