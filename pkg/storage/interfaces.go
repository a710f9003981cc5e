package storage

import (
	"context"
	"io"
)

type StorageService interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader) error
	Delete(ctx context.Context, key string) error
}
