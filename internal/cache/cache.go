// Package cache stores analysis results keyed by the content of the analysed
// series and the pipeline configuration that produced them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry
type Cache interface {
	// Get returns the value for key, and false when it is absent or expired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases backend resources
	Close() error
}

// Pinger is implemented by backends with a remote connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// nopCache never stores anything
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (nopCache) Close() error {
	return nil
}
