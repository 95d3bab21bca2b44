package repositories

import (
	"context"
	"io"
)

// BlobStore keeps raw file content outside the metadata store.
// Handles are opaque to callers.
type BlobStore interface {
	// Save writes data and returns the handle to store on the node
	Save(ctx context.Context, data []byte, ownerID, dataroomID, filename string) (string, error)

	// Open returns a reader for the blob behind handle
	Open(ctx context.Context, handle string) (io.ReadCloser, error)

	// Delete removes the blob. Missing blobs are not an error.
	Delete(ctx context.Context, handle string) error
}
