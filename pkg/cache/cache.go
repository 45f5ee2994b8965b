// Package cache stores resolved layouts and rendered artifacts.
//
// Entries are opaque byte slices addressed by string keys. Keys are built
// by a [Keyer] from the content hash of a layout file plus the options that
// affect the output, so an edited layout never hits a stale entry.
//
// Backends:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the HTTP API, shared between server instances
//   - [MongoCache] where a document store is already deployed
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() NullCache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Hash returns the hex SHA-256 of data. Layout files are identified by the
// hash of their bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<kind>:<sha256 of the JSON of parts>".
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Keyer builds cache keys.
type Keyer interface {
	// ResolveKey addresses the resolved bounds of a layout.
	ResolveKey(layoutHash string, opts ResolveKeyOpts) string

	// RenderKey addresses a rendered artifact of a layout.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// ResolveKeyOpts are the settings that change resolved bounds.
type ResolveKeyOpts struct {
	MaxAttempts int `json:"max_attempts"`
}

// RenderKeyOpts are the settings that change a rendered artifact.
type RenderKeyOpts struct {
	Kind     string `json:"kind"`   // "boxes" or "graph"
	Format   string `json:"format"` // "svg" or "dot"
	Labels   bool   `json:"labels"`
	Detailed bool   `json:"detailed"`
	Padding  int    `json:"padding"`
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResolveKey returns "resolve:<sha256>".
func (DefaultKeyer) ResolveKey(layoutHash string, opts ResolveKeyOpts) string {
	return hashKey("resolve", layoutHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so that clients sharing one
// backend (the CLI and the API server on the same redis) keep separate
// namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResolveKey generates a prefixed resolve key.
func (k *ScopedKeyer) ResolveKey(layoutHash string, opts ResolveKeyOpts) string {
	return k.prefix + k.inner.ResolveKey(layoutHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(layoutHash, opts)
}
