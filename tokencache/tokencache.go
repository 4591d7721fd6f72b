// Package tokencache stores short-lived credentials so that several client
// instances, possibly in different processes, can share one access token
// instead of each running their own grant.
package tokencache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-item expiry.
type Cache interface {
	// Get returns the item stored under key, or nil if it doesn't exist or
	// has expired. An error is returned only for backend failures.
	Get(ctx context.Context, key string) (*Item, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Item is a stored value with its metadata.
type Item struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // nil = no expiration
}

// IsExpired reports whether the item has expired as of now.
func (i *Item) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// NewItem builds an Item created at now with the given ttl.
func NewItem(data []byte, now time.Time, ttl time.Duration) *Item {
	item := &Item{Data: append([]byte(nil), data...), CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		item.ExpiresAt = &exp
	}
	return item
}
