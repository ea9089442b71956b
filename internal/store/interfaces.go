// Package store defines the persisted key/value contract used to host
// metrics buckets and other small JSON blobs.
package store

import "context"

// KV is a flat string-keyed store. Read-modify-write sequences are not
// atomic across processes; the engine runs single-writer per deployment.
type KV interface {
	// Get returns the value for key. The second return is false when the
	// key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the value for key, creating it on first write.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, in unspecified order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
