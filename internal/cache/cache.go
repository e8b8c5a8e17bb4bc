// Package cache provides the mention resolution cache. The resolver
// consults it before running its strategy chain and records successful
// full-scan resolutions afterwards. Cache failures are never fatal: a
// failing backend just behaves like a permanent miss.
package cache

import "context"

// Cache maps normalized product mentions to resolved catalog ids.
type Cache interface {
	// Get returns the cached product id for a mention, if present.
	Get(ctx context.Context, mention string) (string, bool)
	// Set records a resolved mention. Implementations apply their own TTL.
	Set(ctx context.Context, mention, productID string)
	// Close releases backend resources.
	Close() error
}
