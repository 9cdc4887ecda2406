// Package filestore stores deal documents (blobs) keyed by owning entity id
// and an opaque stored name. Failures map onto the service's remote-storage
// error kinds so workflows can report them uniformly.
package filestore

import "context"

// Store is the blob storage collaborator contract.
type Store interface {
	Upload(ctx context.Context, ownerID, storedName string, data []byte) error
	Download(ctx context.Context, ownerID, storedName string) ([]byte, error)
	Delete(ctx context.Context, ownerID, storedName string) error
}
