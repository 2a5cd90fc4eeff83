// Package storage is the filesystem abstraction the catalog lists, stats and
// fetches through. Adapters exist for local disk, Google Cloud Storage and
// Amazon S3.
package storage

import (
	"context"
)

type Storage interface {
	Name() string
	Protocol() Protocol
	// List returns the paths of the files directly under dir. A directory
	// that does not exist yields an empty listing.
	List(ctx context.Context, dir string) ([]string, error)
	// Dirs returns the names of the sub-directories directly under dir.
	Dirs(ctx context.Context, dir string) ([]string, error)
	// Stat returns the size in bytes of the object at path.
	Stat(ctx context.Context, path string) (int64, error)
	// Fetch copies the object at path to the local file dest, creating
	// parent directories as needed.
	Fetch(ctx context.Context, path string, dest string) error
}

// New returns the adapter for protocol. Local storage ignores ctx.
func New(ctx context.Context, protocol Protocol) (Storage, error) {
	switch protocol {
	case GCS:
		return NewGoogleCloud(ctx)
	case S3:
		return NewAmazonS3(ctx)
	case Local:
		return NewLocalFileSystem(), nil
	}
	_, err := ParseProtocol(string(protocol))
	return nil, err
}
