// Package storage maps logical catalog paths onto a blob backend.
package storage

import (
	"context"
	"io"
)

// BlobStore is a backend addressed by slash-delimited keys relative to its root.
type BlobStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	CreateDirectory(ctx context.Context, key string) error
	// WriteStream stores r under key and reports the number of bytes written.
	WriteStream(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	// Location describes where key lives physically, for logs and diagnostics.
	Location(key string) string
}
