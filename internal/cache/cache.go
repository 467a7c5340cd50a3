// Package cache provides a tagged key/value cache used for per-store
// snapshots of the active label catalog.
package cache

import "context"

// Cache stores opaque byte values under string keys. Entries carry tags so
// groups of entries can be flushed together.
//
// Tags must not contain ':'.
type Cache interface {
	// Load returns the value for key. A miss is (nil, false, nil).
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save stores data under key, replacing any previous value, and indexes
	// it under every tag.
	Save(ctx context.Context, key string, data []byte, tags ...string) error
	// Remove deletes a single entry. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Clean deletes every entry carrying any of the tags and returns how
	// many entries were removed.
	Clean(ctx context.Context, tags ...string) (int, error)
}
