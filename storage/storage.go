package storage

import "context"

// StoredAsset is what a successful upload yields: a publicly fetchable URL
// and the remote path needed to delete the asset later.
type StoredAsset struct {
	URL  string
	Path string
}

// AssetStore is the capability the event handlers need from a remote object
// store. Implementations must be safe for concurrent use.
type AssetStore interface {
	// Store uploads data under a collision-resistant path derived from
	// filename and returns the public URL and remote path.
	Store(ctx context.Context, filename string, data []byte) (StoredAsset, error)
	// Delete removes a previously stored asset. Best-effort callers may
	// ignore the error.
	Delete(ctx context.Context, path string) error
}
