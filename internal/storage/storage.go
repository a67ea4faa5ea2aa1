// Package storage defines the interface for object storage operations.
// The MinIO implementation works with any S3-compatible provider, including
// the hosted backend's S3 gateway.
package storage

import (
	"context"
	"io"
)

// Lister lists object keys under a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

// Storage is the interface for uploading, listing and addressing objects.
type Storage interface {
	Lister
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
